package handler

import (
	"net/http"
	"strconv"

	"github.com/DeiVid1337/Boss-Pods-Api/internal/model"
	"github.com/DeiVid1337/Boss-Pods-Api/internal/service"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/cache"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/database"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRequest defines the structure for user creation/update requests
type UserRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
	StoreID  *uint      `json:"store_id"`
	IsActive *bool      `json:"is_active"`
}

// validateRoleAndStore enforces role/store consistency: admins carry no
// store, managers and sellers must belong to one.
func validateRoleAndStore(role model.Role, storeID *uint, errs service.ValidationErrors) {
	if !role.Valid() {
		errs.Add("role", "The role must be admin, manager or seller.")
		return
	}
	if role == model.RoleAdmin {
		return
	}
	if storeID == nil {
		errs.Add("store_id", "The store ID is required for managers and sellers.")
		return
	}
	var count int64
	database.GetDB().Model(&model.Store{}).Where("id = ?", *storeID).Count(&count)
	if count == 0 {
		errs.Add("store_id", "The selected store does not exist.")
	}
}

// canManageUser reports whether actor may manage target-shaped users
func canManageUser(actor *model.User, role model.Role, storeID *uint) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.IsManager() {
		// Managers stay inside their own store and cannot mint admins
		return role != model.RoleAdmin && storeID != nil && actor.BelongsToStore(*storeID)
	}
	return false
}

// ListUsers returns users visible to the actor: all for admins, same-store
// for managers, none for sellers.
func ListUsers(c echo.Context) error {
	user := currentUser(c)
	if user.IsSeller() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "sellers cannot list users"})
	}
	page, perPage := pageParams(c)

	key := cache.ListKey("users", map[string]string{
		"user_id":  strconv.FormatUint(uint64(user.ID), 10),
		"role":     string(user.Role),
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(perPage),
		"search":   c.QueryParam("search"),
		"filter":   c.QueryParam("role"),
		"store_id": c.QueryParam("store_id"),
	})

	var response echo.Map
	err := rememberList(c, key, &response, func() (interface{}, error) {
		query := database.GetDB().Model(&model.User{})

		if user.IsManager() {
			if user.StoreID == nil {
				return paginated([]model.User{}, page, perPage, 0), nil
			}
			query = query.Where("store_id = ?", *user.StoreID)
		}

		if search := c.QueryParam("search"); search != "" {
			pattern := "%" + search + "%"
			query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern)
		}
		if role := c.QueryParam("role"); role != "" {
			query = query.Where("role = ?", role)
		}
		if storeID := c.QueryParam("store_id"); storeID != "" && user.IsAdmin() {
			query = query.Where("store_id = ?", storeID)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			return nil, err
		}

		var users []model.User
		err := query.Order("name asc").
			Offset((page - 1) * perPage).
			Limit(perPage).
			Preload("Store").
			Find(&users).Error
		if err != nil {
			return nil, err
		}
		return paginated(users, page, perPage, total), nil
	})
	if err != nil {
		logger.FromContext(c).Error("Failed to list users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve users"})
	}

	return c.JSON(http.StatusOK, response)
}

// GetUser returns a single user visible to the actor
func GetUser(c echo.Context) error {
	actor := currentUser(c)

	var user model.User
	if err := database.GetDB().Preload("Store").First(&user, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	}

	if actor.IsSeller() && actor.ID != user.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only view your own account"})
	}
	if actor.IsManager() && actor.ID != user.ID {
		if user.StoreID == nil || !actor.BelongsToStore(*user.StoreID) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only view users of your store"})
		}
	}

	return c.JSON(http.StatusOK, user)
}

// CreateUser creates a staff account
func CreateUser(c echo.Context) error {
	log := logger.FromContext(c)
	actor := currentUser(c)

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	errs := service.ValidationErrors{}
	if req.Name == "" {
		errs.Add("name", "The name field is required.")
	}
	if req.Email == "" {
		errs.Add("email", "The email field is required.")
	}
	if len(req.Password) < 8 {
		errs.Add("password", "The password must be at least 8 characters.")
	}
	validateRoleAndStore(req.Role, req.StoreID, errs)
	if errs.Any() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "Validation failed.", "errors": errs})
	}

	if !canManageUser(actor, req.Role, req.StoreID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you cannot create this user"})
	}

	var count int64
	database.GetDB().Model(&model.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Email already exists"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create user"})
	}

	storeID := req.StoreID
	if req.Role == model.RoleAdmin {
		storeID = nil
	}

	user := model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Role:     req.Role,
		StoreID:  storeID,
		IsActive: true,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := database.GetDB().Create(&user).Error; err != nil {
		log.Error("Failed to create user", zap.String("email", req.Email), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create user"})
	}

	log.Info("User created",
		zap.Uint("user_id", user.ID),
		zap.String("role", string(user.Role)))
	invalidate(c, "users", user.ID)
	return c.JSON(http.StatusCreated, user)
}

// UpdateUser updates a staff account
func UpdateUser(c echo.Context) error {
	log := logger.FromContext(c)
	actor := currentUser(c)

	var user model.User
	if err := database.GetDB().First(&user, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	}

	if !canManageUser(actor, user.Role, user.StoreID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you cannot update this user"})
	}

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" && req.Email != user.Email {
		var count int64
		database.GetDB().Model(&model.User{}).Where("email = ? AND id != ?", req.Email, user.ID).Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Email already exists"})
		}
		user.Email = req.Email
	}
	if req.Role != "" {
		errs := service.ValidationErrors{}
		storeID := req.StoreID
		if storeID == nil {
			storeID = user.StoreID
		}
		validateRoleAndStore(req.Role, storeID, errs)
		if errs.Any() {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "Validation failed.", "errors": errs})
		}
		if !canManageUser(actor, req.Role, storeID) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "you cannot assign this role"})
		}
		user.Role = req.Role
		user.StoreID = storeID
		if user.Role == model.RoleAdmin {
			user.StoreID = nil
		}
	} else if req.StoreID != nil && !user.IsAdmin() {
		user.StoreID = req.StoreID
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"message": "Validation failed.",
				"errors":  echo.Map{"password": []string{"The password must be at least 8 characters."}},
			})
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update user"})
		}
		user.Password = string(hash)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := database.GetDB().Save(&user).Error; err != nil {
		log.Error("Failed to update user", zap.Uint("user_id", user.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update user"})
	}

	log.Info("User updated", zap.Uint("user_id", user.ID))
	invalidate(c, "users", user.ID)
	return c.JSON(http.StatusOK, user)
}

// DeleteUser soft-deletes a staff account
func DeleteUser(c echo.Context) error {
	log := logger.FromContext(c)
	actor := currentUser(c)

	var user model.User
	if err := database.GetDB().First(&user, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	}

	if !canManageUser(actor, user.Role, user.StoreID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you cannot delete this user"})
	}
	if actor.ID == user.ID {
		return c.JSON(http.StatusConflict, echo.Map{"error": "you cannot delete your own account"})
	}

	if err := database.GetDB().Delete(&user).Error; err != nil {
		log.Error("Failed to delete user", zap.Uint("user_id", user.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete user"})
	}

	log.Info("User deleted", zap.Uint("user_id", user.ID))
	invalidate(c, "users", user.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}

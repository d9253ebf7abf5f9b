package handler

import (
	"net/http"
	"strconv"

	"github.com/DeiVid1337/Boss-Pods-Api/internal/model"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/cache"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/database"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// StoreRequest defines the structure for store creation/update requests
type StoreRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	IsActive *bool  `json:"is_active"`
}

// ListStores returns every store for admins, the user's own store otherwise
func ListStores(c echo.Context) error {
	user := currentUser(c)
	page, perPage := pageParams(c)

	key := cache.ListKey("stores", map[string]string{
		"user_id":   strconv.FormatUint(uint64(user.ID), 10),
		"role":      string(user.Role),
		"page":      strconv.Itoa(page),
		"per_page":  strconv.Itoa(perPage),
		"is_active": c.QueryParam("is_active"),
	})

	var response echo.Map
	err := rememberList(c, key, &response, func() (interface{}, error) {
		query := database.GetDB().Model(&model.Store{})

		if !user.IsAdmin() {
			if user.StoreID == nil {
				return paginated([]model.Store{}, page, perPage, 0), nil
			}
			query = query.Where("id = ?", *user.StoreID)
		}

		if isActive := c.QueryParam("is_active"); isActive != "" {
			if active, err := strconv.ParseBool(isActive); err == nil {
				query = query.Where("is_active = ?", active)
			}
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			return nil, err
		}

		var stores []model.Store
		err := query.Order("name asc").
			Offset((page - 1) * perPage).
			Limit(perPage).
			Find(&stores).Error
		if err != nil {
			return nil, err
		}
		return paginated(stores, page, perPage, total), nil
	})
	if err != nil {
		logger.FromContext(c).Error("Failed to list stores", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve stores"})
	}

	return c.JSON(http.StatusOK, response)
}

// GetStore returns a single store
func GetStore(c echo.Context) error {
	store, err := resolveStore(c)
	if store == nil {
		return err
	}
	return c.JSON(http.StatusOK, store)
}

// CreateStore creates a new store (admin only)
func CreateStore(c echo.Context) error {
	log := logger.FromContext(c)
	user := currentUser(c)

	if !user.IsAdmin() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only admins can create stores"})
	}

	var req StoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "Validation failed.",
			"errors":  echo.Map{"name": []string{"The name field is required."}},
		})
	}

	store := model.Store{
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		IsActive: true,
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}

	if err := database.GetDB().Create(&store).Error; err != nil {
		log.Error("Failed to create store", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create store"})
	}

	log.Info("Store created", zap.Uint("store_id", store.ID), zap.String("name", store.Name))
	invalidate(c, "stores", store.ID)
	return c.JSON(http.StatusCreated, store)
}

// UpdateStore updates a store (admin, or the store's manager)
func UpdateStore(c echo.Context) error {
	log := logger.FromContext(c)
	user := currentUser(c)

	store, err := resolveStore(c)
	if store == nil {
		return err
	}

	if !user.IsAdmin() && !(user.IsManager() && user.BelongsToStore(store.ID)) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you cannot update this store"})
	}

	var req StoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Name != "" {
		store.Name = req.Name
	}
	if req.Address != "" {
		store.Address = req.Address
	}
	if req.Phone != "" {
		store.Phone = req.Phone
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}

	if err := database.GetDB().Save(store).Error; err != nil {
		log.Error("Failed to update store", zap.Uint("store_id", store.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update store"})
	}

	log.Info("Store updated", zap.Uint("store_id", store.ID))
	invalidate(c, "stores", store.ID)
	return c.JSON(http.StatusOK, store)
}

// DeleteStore soft-deletes a store (admin only). Historical sales keep their
// references.
func DeleteStore(c echo.Context) error {
	log := logger.FromContext(c)
	user := currentUser(c)

	if !user.IsAdmin() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only admins can delete stores"})
	}

	store, err := resolveStore(c)
	if store == nil {
		return err
	}

	if err := database.GetDB().Delete(store).Error; err != nil {
		log.Error("Failed to delete store", zap.Uint("store_id", store.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete store"})
	}

	log.Info("Store deleted", zap.Uint("store_id", store.ID))
	invalidate(c, "stores", store.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Store deleted successfully"})
}

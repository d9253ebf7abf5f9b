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

// CustomerRequest defines the structure for customer creation/update requests
type CustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ListCustomers returns customers with optional search
func ListCustomers(c echo.Context) error {
	page, perPage := pageParams(c)

	key := cache.ListKey("customers", map[string]string{
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(perPage),
		"search":   c.QueryParam("search"),
	})

	var response echo.Map
	err := rememberList(c, key, &response, func() (interface{}, error) {
		query := database.GetDB().Model(&model.Customer{})

		if search := c.QueryParam("search"); search != "" {
			pattern := "%" + search + "%"
			query = query.Where("LOWER(name) LIKE LOWER(?) OR phone LIKE ?", pattern, pattern)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			return nil, err
		}

		var customers []model.Customer
		err := query.Order("name asc").
			Offset((page - 1) * perPage).
			Limit(perPage).
			Find(&customers).Error
		if err != nil {
			return nil, err
		}
		return paginated(customers, page, perPage, total), nil
	})
	if err != nil {
		logger.FromContext(c).Error("Failed to list customers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve customers"})
	}

	return c.JSON(http.StatusOK, response)
}

// GetCustomer returns a single customer
func GetCustomer(c echo.Context) error {
	var customer model.Customer
	if err := database.GetDB().First(&customer, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}
	return c.JSON(http.StatusOK, customer)
}

// CreateCustomer creates a customer. Phone numbers are unique.
func CreateCustomer(c echo.Context) error {
	log := logger.FromContext(c)

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	errs := echo.Map{}
	if req.Name == "" {
		errs["name"] = []string{"The name field is required."}
	}
	if req.Phone == "" {
		errs["phone"] = []string{"The phone field is required."}
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "Validation failed.", "errors": errs})
	}

	var count int64
	database.GetDB().Model(&model.Customer{}).Where("phone = ?", req.Phone).Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Customer with this phone already exists"})
	}

	customer := model.Customer{Name: req.Name, Phone: req.Phone}
	if err := database.GetDB().Create(&customer).Error; err != nil {
		log.Error("Failed to create customer", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create customer"})
	}

	log.Info("Customer created", zap.Uint("customer_id", customer.ID))
	invalidate(c, "customers", customer.ID)
	return c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer updates a customer's name/phone. TotalPurchases is owned by
// the sale workflow and cannot be set here.
func UpdateCustomer(c echo.Context) error {
	log := logger.FromContext(c)

	var customer model.Customer
	if err := database.GetDB().First(&customer, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Phone != "" && req.Phone != customer.Phone {
		var count int64
		database.GetDB().Model(&model.Customer{}).
			Where("phone = ? AND id != ?", req.Phone, customer.ID).
			Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Customer with this phone already exists"})
		}
		customer.Phone = req.Phone
	}
	if req.Name != "" {
		customer.Name = req.Name
	}

	if err := database.GetDB().Save(&customer).Error; err != nil {
		log.Error("Failed to update customer", zap.Uint("customer_id", customer.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update customer"})
	}

	log.Info("Customer updated", zap.Uint("customer_id", customer.ID))
	invalidate(c, "customers", customer.ID)
	return c.JSON(http.StatusOK, customer)
}

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

// ProductRequest defines the structure for catalog product requests
type ProductRequest struct {
	Brand  string `json:"brand"`
	Name   string `json:"name"`
	Flavor string `json:"flavor"`
}

func (r *ProductRequest) validate() echo.Map {
	errs := echo.Map{}
	if r.Brand == "" {
		errs["brand"] = []string{"The brand field is required."}
	}
	if r.Name == "" {
		errs["name"] = []string{"The name field is required."}
	}
	if r.Flavor == "" {
		errs["flavor"] = []string{"The flavor field is required."}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ListProducts handles retrieving the catalog with optional filtering
func ListProducts(c echo.Context) error {
	page, perPage := pageParams(c)

	key := cache.ListKey("products", map[string]string{
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(perPage),
		"search":   c.QueryParam("search"),
		"brand":    c.QueryParam("brand"),
	})

	var response echo.Map
	err := rememberList(c, key, &response, func() (interface{}, error) {
		query := database.GetDB().Model(&model.Product{})

		if search := c.QueryParam("search"); search != "" {
			pattern := "%" + search + "%"
			query = query.Where(
				"LOWER(brand) LIKE LOWER(?) OR LOWER(name) LIKE LOWER(?) OR LOWER(flavor) LIKE LOWER(?)",
				pattern, pattern, pattern)
		}
		if brand := c.QueryParam("brand"); brand != "" {
			query = query.Where("brand = ?", brand)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			return nil, err
		}

		var products []model.Product
		err := query.Order("brand asc, name asc").
			Offset((page - 1) * perPage).
			Limit(perPage).
			Find(&products).Error
		if err != nil {
			return nil, err
		}
		return paginated(products, page, perPage, total), nil
	})
	if err != nil {
		logger.FromContext(c).Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}

	return c.JSON(http.StatusOK, response)
}

// GetProduct handles retrieving a single catalog product by ID
func GetProduct(c echo.Context) error {
	id := c.Param("id")

	var product model.Product
	if err := database.GetDB().First(&product, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}
	return c.JSON(http.StatusOK, product)
}

// CreateProduct adds a catalog product (admins and managers)
func CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	user := currentUser(c)

	if user.IsSeller() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "sellers cannot manage the catalog"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if errs := req.validate(); errs != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "Validation failed.", "errors": errs})
	}

	// The brand/name/flavor triple is unique
	var count int64
	database.GetDB().Model(&model.Product{}).
		Where("brand = ? AND name = ? AND flavor = ?", req.Brand, req.Name, req.Flavor).
		Count(&count)
	if count > 0 {
		log.Warn("Duplicate product", zap.String("brand", req.Brand), zap.String("name", req.Name))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Product with this brand, name and flavor already exists"})
	}

	product := model.Product{Brand: req.Brand, Name: req.Name, Flavor: req.Flavor}
	if err := database.GetDB().Create(&product).Error; err != nil {
		log.Error("Failed to create product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create product"})
	}

	log.Info("Product created", zap.Uint("product_id", product.ID), zap.String("name", product.FullName()))
	invalidate(c, "products", product.ID)
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct updates a catalog product (admins and managers)
func UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	user := currentUser(c)
	id := c.Param("id")

	if user.IsSeller() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "sellers cannot manage the catalog"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if errs := req.validate(); errs != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "Validation failed.", "errors": errs})
	}

	var product model.Product
	if err := database.GetDB().First(&product, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	var count int64
	database.GetDB().Model(&model.Product{}).
		Where("brand = ? AND name = ? AND flavor = ? AND id != ?", req.Brand, req.Name, req.Flavor, product.ID).
		Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Product with this brand, name and flavor already exists"})
	}

	product.Brand = req.Brand
	product.Name = req.Name
	product.Flavor = req.Flavor

	if err := database.GetDB().Save(&product).Error; err != nil {
		log.Error("Failed to update product", zap.Uint("product_id", product.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update product"})
	}

	log.Info("Product updated", zap.Uint("product_id", product.ID))
	invalidate(c, "products", product.ID)
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a catalog product. Blocked while any store still
// stocks it.
func DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	user := currentUser(c)
	id := c.Param("id")

	if user.IsSeller() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "sellers cannot manage the catalog"})
	}

	var product model.Product
	if err := database.GetDB().First(&product, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	// Soft-deleted ledger rows still reference the product and can be
	// restored, so the check must see them too
	var referenced int64
	database.GetDB().Unscoped().Model(&model.StoreProduct{}).Where("product_id = ?", product.ID).Count(&referenced)
	if referenced > 0 {
		log.Warn("Product still referenced by store inventories",
			zap.Uint("product_id", product.ID),
			zap.Int64("store_products", referenced))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Cannot delete: product is stocked by one or more stores"})
	}

	if err := database.GetDB().Delete(&product).Error; err != nil {
		log.Error("Failed to delete product", zap.Uint("product_id", product.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete product"})
	}

	log.Info("Product deleted", zap.Uint("product_id", product.ID))
	invalidate(c, "products", product.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}

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
)

// StoreProductRequest defines the structure for store inventory requests
type StoreProductRequest struct {
	ProductID     uint     `json:"product_id"`
	CostPrice     *float64 `json:"cost_price"`
	SalePrice     *float64 `json:"sale_price"`
	StockQuantity *int     `json:"stock_quantity"`
	MinStockLevel *int     `json:"min_stock_level"`
	IsActive      *bool    `json:"is_active"`
}

// storeProductResponse adds the derived available_quantity field: stock not
// currently held by any seller.
type storeProductResponse struct {
	model.StoreProduct
	AvailableQuantity int `json:"available_quantity"`
}

func withAvailableQuantity(storeProduct model.StoreProduct) (storeProductResponse, error) {
	available, err := service.AvailableQuantity(database.GetDB(), &storeProduct)
	if err != nil {
		return storeProductResponse{}, err
	}
	return storeProductResponse{StoreProduct: storeProduct, AvailableQuantity: available}, nil
}

// ListStoreProducts returns a store's inventory with optional filtering
func ListStoreProducts(c echo.Context) error {
	store, err := resolveStore(c)
	if store == nil {
		return err
	}
	page, perPage := pageParams(c)

	key := cache.ListKey("store_products", map[string]string{
		"store_id":  strconv.FormatUint(uint64(store.ID), 10),
		"page":      strconv.Itoa(page),
		"per_page":  strconv.Itoa(perPage),
		"search":    c.QueryParam("search"),
		"is_active": c.QueryParam("is_active"),
		"low_stock": c.QueryParam("low_stock"),
	})

	var response echo.Map
	err = rememberList(c, key, &response, func() (interface{}, error) {
		query := database.GetDB().Model(&model.StoreProduct{}).Where("store_products.store_id = ?", store.ID)

		if search := c.QueryParam("search"); search != "" {
			pattern := "%" + search + "%"
			query = query.Joins("JOIN products ON products.id = store_products.product_id").
				Where("LOWER(products.brand) LIKE LOWER(?) OR LOWER(products.name) LIKE LOWER(?) OR LOWER(products.flavor) LIKE LOWER(?)",
					pattern, pattern, pattern)
		}
		if isActive := c.QueryParam("is_active"); isActive != "" {
			if active, parseErr := strconv.ParseBool(isActive); parseErr == nil {
				query = query.Where("store_products.is_active = ?", active)
			}
		}
		if lowStock, parseErr := strconv.ParseBool(c.QueryParam("low_stock")); parseErr == nil && lowStock {
			query = query.Where("store_products.stock_quantity <= store_products.min_stock_level")
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			return nil, err
		}

		var storeProducts []model.StoreProduct
		err := query.Order("store_products.created_at desc").
			Offset((page - 1) * perPage).
			Limit(perPage).
			Preload("Product").
			Find(&storeProducts).Error
		if err != nil {
			return nil, err
		}

		responses := make([]storeProductResponse, 0, len(storeProducts))
		for _, storeProduct := range storeProducts {
			item, err := withAvailableQuantity(storeProduct)
			if err != nil {
				return nil, err
			}
			responses = append(responses, item)
		}
		return paginated(responses, page, perPage, total), nil
	})
	if err != nil {
		logger.FromContext(c).Error("Failed to list store products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve store products"})
	}

	return c.JSON(http.StatusOK, response)
}

// GetStoreProduct returns a single inventory row scoped to the store
func GetStoreProduct(c echo.Context) error {
	store, err := resolveStore(c)
	if store == nil {
		return err
	}

	var storeProduct model.StoreProduct
	result := database.GetDB().Where("store_id = ?", store.ID).Preload("Product").First(&storeProduct, c.Param("id"))
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Store product not found"})
	}

	response, err := withAvailableQuantity(storeProduct)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve store product"})
	}
	return c.JSON(http.StatusOK, response)
}

// CreateStoreProduct adds a product to a store's inventory
func CreateStoreProduct(c echo.Context) error {
	log := logger.FromContext(c)
	user := currentUser(c)

	store, err := resolveStore(c)
	if store == nil {
		return err
	}
	if user.IsSeller() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "sellers cannot manage store inventory"})
	}

	var req StoreProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	errs := service.ValidationErrors{}
	if req.ProductID == 0 {
		errs.Add("product_id", "The product ID is required.")
	}
	if req.CostPrice == nil || *req.CostPrice < 0 {
		errs.Add("cost_price", "The cost price must be zero or greater.")
	}
	if req.SalePrice == nil || *req.SalePrice < 0 {
		errs.Add("sale_price", "The sale price must be zero or greater.")
	}
	if req.CostPrice != nil && req.SalePrice != nil && *req.SalePrice < *req.CostPrice {
		errs.Add("sale_price", "The sale price must be greater than or equal to the cost price.")
	}
	if req.StockQuantity != nil && *req.StockQuantity < 0 {
		errs.Add("stock_quantity", "The stock quantity must be zero or greater.")
	}
	if errs.Any() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "Validation failed.", "errors": errs})
	}

	var product model.Product
	if err := database.GetDB().First(&product, req.ProductID).Error; err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "Validation failed.",
			"errors":  echo.Map{"product_id": []string{"The selected product does not exist."}},
		})
	}

	// Unique per (store, product)
	var count int64
	database.GetDB().Model(&model.StoreProduct{}).
		Where("store_id = ? AND product_id = ?", store.ID, req.ProductID).
		Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Product already in store inventory"})
	}

	storeProduct := model.StoreProduct{
		StoreID:   store.ID,
		ProductID: req.ProductID,
		CostPrice: *req.CostPrice,
		SalePrice: *req.SalePrice,
		IsActive:  true,
	}
	if req.StockQuantity != nil {
		storeProduct.StockQuantity = *req.StockQuantity
	}
	if req.MinStockLevel != nil {
		storeProduct.MinStockLevel = *req.MinStockLevel
	}
	if req.IsActive != nil {
		storeProduct.IsActive = *req.IsActive
	}

	if err := database.GetDB().Create(&storeProduct).Error; err != nil {
		log.Error("Failed to create store product", zap.Uint("store_id", store.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create store product"})
	}

	database.GetDB().Preload("Product").First(&storeProduct, storeProduct.ID)

	log.Info("Store product created",
		zap.Uint("store_id", store.ID),
		zap.Uint("store_product_id", storeProduct.ID),
		zap.Uint("product_id", storeProduct.ProductID))
	invalidate(c, "store_products", storeProduct.ID)
	return c.JSON(http.StatusCreated, storeProductResponse{StoreProduct: storeProduct, AvailableQuantity: storeProduct.StockQuantity})
}

// UpdateStoreProduct updates pricing, stock and flags on an inventory row
func UpdateStoreProduct(c echo.Context) error {
	log := logger.FromContext(c)
	user := currentUser(c)

	store, err := resolveStore(c)
	if store == nil {
		return err
	}
	if user.IsSeller() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "sellers cannot manage store inventory"})
	}

	var storeProduct model.StoreProduct
	result := database.GetDB().Where("store_id = ?", store.ID).First(&storeProduct, c.Param("id"))
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Store product not found"})
	}

	var req StoreProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.CostPrice != nil {
		storeProduct.CostPrice = *req.CostPrice
	}
	if req.SalePrice != nil {
		storeProduct.SalePrice = *req.SalePrice
	}
	if req.StockQuantity != nil {
		storeProduct.StockQuantity = *req.StockQuantity
	}
	if req.MinStockLevel != nil {
		storeProduct.MinStockLevel = *req.MinStockLevel
	}
	if req.IsActive != nil {
		storeProduct.IsActive = *req.IsActive
	}

	errs := service.ValidationErrors{}
	if storeProduct.SalePrice < storeProduct.CostPrice {
		errs.Add("sale_price", "The sale price must be greater than or equal to the cost price.")
	}
	if storeProduct.StockQuantity < 0 {
		errs.Add("stock_quantity", "The stock quantity must be zero or greater.")
	}
	if errs.Any() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "Validation failed.", "errors": errs})
	}

	if err := database.GetDB().Save(&storeProduct).Error; err != nil {
		log.Error("Failed to update store product", zap.Uint("store_product_id", storeProduct.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update store product"})
	}

	database.GetDB().Preload("Product").First(&storeProduct, storeProduct.ID)

	log.Info("Store product updated", zap.Uint("store_product_id", storeProduct.ID))
	invalidate(c, "store_products", storeProduct.ID)

	response, err := withAvailableQuantity(storeProduct)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve store product"})
	}
	return c.JSON(http.StatusOK, response)
}

// DeleteStoreProduct soft-deletes an inventory row. Blocked while sale items
// reference it, so sales history stays intact.
func DeleteStoreProduct(c echo.Context) error {
	log := logger.FromContext(c)
	user := currentUser(c)

	store, err := resolveStore(c)
	if store == nil {
		return err
	}
	if user.IsSeller() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "sellers cannot manage store inventory"})
	}

	var storeProduct model.StoreProduct
	result := database.GetDB().Where("store_id = ?", store.ID).First(&storeProduct, c.Param("id"))
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Store product not found"})
	}

	var referenced int64
	database.GetDB().Model(&model.SaleItem{}).Where("store_product_id = ?", storeProduct.ID).Count(&referenced)
	if referenced > 0 {
		log.Warn("Store product has sales history",
			zap.Uint("store_product_id", storeProduct.ID),
			zap.Int64("sale_items", referenced))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Cannot delete: product has sales history"})
	}

	if err := database.GetDB().Delete(&storeProduct).Error; err != nil {
		log.Error("Failed to delete store product", zap.Uint("store_product_id", storeProduct.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete store product"})
	}

	log.Info("Store product deleted", zap.Uint("store_product_id", storeProduct.ID))
	invalidate(c, "store_products", storeProduct.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Store product deleted successfully"})
}

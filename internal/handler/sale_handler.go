package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/DeiVid1337/Boss-Pods-Api/internal/service"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/logger"
	"github.com/DeiVid1337/Boss-Pods-Api/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateSaleRequest defines the structure for sale creation requests
type CreateSaleRequest struct {
	CustomerID *uint                   `json:"customer_id"`
	Items      []service.SaleItemInput `json:"items"`
	Notes      string                  `json:"notes"`
}

// ListSales returns a store's sales. Sellers only see their own.
func ListSales(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())
	log := logger.FromContext(c)
	user := currentUser(c)

	store, err := resolveStore(c)
	if store == nil {
		return err
	}

	page, perPage := pageParams(c)
	filters := service.SaleFilters{
		Search:    c.QueryParam("search"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
		Page:      page,
		PerPage:   perPage,
	}
	if from := c.QueryParam("from"); from != "" {
		if t, parseErr := time.Parse(time.RFC3339, from); parseErr == nil {
			filters.From = &t
		}
	}
	if to := c.QueryParam("to"); to != "" {
		if t, parseErr := time.Parse(time.RFC3339, to); parseErr == nil {
			filters.To = &t
		}
	}

	sales, total, err := saleService().List(store, user, filters)
	if err != nil {
		log.Error("Failed to list sales", zap.Uint("store_id", store.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve sales"})
	}

	return c.JSON(http.StatusOK, paginated(sales, page, perPage, total))
}

// GetSale returns a single sale scoped to the store
func GetSale(c echo.Context) error {
	user := currentUser(c)

	store, err := resolveStore(c)
	if store == nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sale ID"})
	}

	sale, err := saleService().Find(store, uint(id))
	if err != nil {
		return respondServiceError(c, err)
	}

	if user.IsSeller() && sale.UserID != user.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only view your own sales"})
	}

	return c.JSON(http.StatusOK, sale)
}

// CreateSale records a sale for the store. The whole operation is atomic:
// on a 422 nothing has been written.
func CreateSale(c echo.Context) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	log := logger.FromContext(c)
	user := currentUser(c)

	store, err := resolveStore(c)
	if store == nil {
		return err
	}

	var req CreateSaleRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if errs := validateItems(req.Items); errs.Any() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "Validation failed.", "errors": errs})
	}
	if len(req.Notes) > 1000 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "Validation failed.",
			"errors":  echo.Map{"notes": []string{"Notes may not be greater than 1000 characters."}},
		})
	}

	storeLabel := strconv.FormatUint(uint64(store.ID), 10)
	sale, err := saleService().CreateSale(c.Request().Context(), store, user, service.CreateSaleInput{
		CustomerID: req.CustomerID,
		Items:      req.Items,
		Notes:      req.Notes,
	})
	if err != nil {
		prometheus.RecordSale(storeLabel, "rejected")
		if _, ok := service.AsValidationErrors(err); !ok {
			log.Error("Failed to create sale", zap.Uint("store_id", store.ID), zap.Error(err))
		}
		return respondServiceError(c, err)
	}

	prometheus.RecordSale(storeLabel, "completed")
	prometheus.SaleAmountTotal.Add(sale.TotalAmount)
	for _, item := range sale.SaleItems {
		prometheus.SaleItemsCounter.Add(float64(item.Quantity))
		if item.StoreProduct != nil {
			prometheus.UpdateStockQuantity(storeLabel,
				strconv.FormatUint(uint64(item.StoreProductID), 10),
				float64(item.StoreProduct.StockQuantity))
		}
	}

	log.Info("Sale created",
		zap.Uint("sale_id", sale.ID),
		zap.Uint("store_id", store.ID),
		zap.Uint("user_id", user.ID),
		zap.Float64("total_amount", sale.TotalAmount),
		zap.Int("items", len(sale.SaleItems)))

	// Stock levels changed; cached store product views are stale
	invalidate(c, "store_products", 0)

	return c.JSON(http.StatusCreated, sale)
}

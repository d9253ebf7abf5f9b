package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/DeiVid1337/Boss-Pods-Api/internal/middleware"
	"github.com/DeiVid1337/Boss-Pods-Api/internal/model"
	"github.com/DeiVid1337/Boss-Pods-Api/internal/service"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/cache"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/database"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/events"
	"github.com/labstack/echo/v4"
)

// Shared collaborators, wired in main before the server starts.
var (
	Cache     *cache.Cache
	Publisher events.Publisher = events.NopPublisher{}
)

func saleService() *service.SaleService {
	return service.NewSaleService(database.GetDB(), Publisher)
}

func inventoryService() *service.SellerInventoryService {
	return service.NewSellerInventoryService(database.GetDB())
}

func currentUser(c echo.Context) *model.User {
	return middleware.CurrentUser(c)
}

// resolveStore loads the store from the :store route param. On failure the
// response has already been written and the returned error should be
// propagated as-is.
func resolveStore(c echo.Context) (*model.Store, error) {
	id, err := strconv.ParseUint(c.Param("store"), 10, 64)
	if err != nil {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store ID"})
	}

	var store model.Store
	if err := database.GetDB().First(&store, id).Error; err != nil {
		return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
	}
	return &store, nil
}

// respondServiceError maps service-layer errors onto HTTP responses
func respondServiceError(c echo.Context, err error) error {
	if errs, ok := service.AsValidationErrors(err); ok {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "Validation failed.",
			"errors":  errs,
		})
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict with existing data"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}

// validateItems applies the input-shape rules shared by sale, withdraw and
// return requests. Business validation (stock, ownership) happens later in
// the service layer.
func validateItems(items []service.SaleItemInput) service.ValidationErrors {
	errs := service.ValidationErrors{}
	if len(items) == 0 {
		errs.Add("items", "At least one item is required.")
		return errs
	}
	for i, item := range items {
		if item.StoreProductID == 0 {
			errs.Add(fmt.Sprintf("items.%d.store_product_id", i), "The store product ID is required.")
		}
		if item.Quantity < 1 {
			errs.Add(fmt.Sprintf("items.%d.quantity", i), "The quantity must be at least 1.")
		}
	}
	return errs
}

func pageParams(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	if perPage < 1 {
		perPage = 15
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

func paginated(data interface{}, page, perPage int, total int64) echo.Map {
	return echo.Map{
		"data": data,
		"meta": echo.Map{
			"page":     page,
			"per_page": perPage,
			"total":    total,
		},
	}
}

// rememberList reads a list response through the cache when one is wired
func rememberList(c echo.Context, key string, dest *echo.Map, loader func() (interface{}, error)) error {
	if Cache == nil {
		value, err := loader()
		if err != nil {
			return err
		}
		*dest = value.(echo.Map)
		return nil
	}
	return Cache.RememberList(c.Request().Context(), key, dest, loader)
}

// invalidate drops the resource's cached list and show entries after a write
func invalidate(c echo.Context, resource string, id uint) {
	if Cache == nil {
		return
	}
	ctx := c.Request().Context()
	Cache.InvalidateList(ctx, resource)
	if id != 0 {
		Cache.InvalidateShow(ctx, resource, id)
	}
}

package handler

import (
	"net/http"
	"time"

	"github.com/DeiVid1337/Boss-Pods-Api/internal/model"
	"github.com/DeiVid1337/Boss-Pods-Api/internal/service"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/database"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/logger"
	"github.com/DeiVid1337/Boss-Pods-Api/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// InventoryRequest defines the structure for withdraw/return requests. The
// optional seller_id lets admins and managers act on behalf of a seller.
type InventoryRequest struct {
	SellerID *uint                   `json:"seller_id"`
	Items    []service.SaleItemInput `json:"items"`
}

// resolveEffectiveSeller applies the authority rules: a seller acts only for
// themselves; admins, and managers of the store, may act for any seller of
// the store. On failure the response has been written.
func resolveEffectiveSeller(c echo.Context, store *model.Store, actor *model.User, sellerID *uint) (*model.User, error) {
	if sellerID == nil || *sellerID == actor.ID {
		return actor, nil
	}

	if actor.IsSeller() {
		return nil, c.JSON(http.StatusForbidden, echo.Map{"error": "you can only manage your own inventory"})
	}
	if actor.IsManager() && !actor.BelongsToStore(store.ID) {
		return nil, c.JSON(http.StatusForbidden, echo.Map{"error": "you can only manage sellers of your store"})
	}

	var seller model.User
	if err := database.GetDB().First(&seller, *sellerID).Error; err != nil {
		return nil, c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "Validation failed.",
			"errors":  echo.Map{"seller_id": []string{"The selected seller does not exist."}},
		})
	}
	if !seller.IsSeller() {
		return nil, c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "Validation failed.",
			"errors":  echo.Map{"seller_id": []string{"The selected seller must be a seller."}},
		})
	}
	if !seller.BelongsToStore(store.ID) {
		return nil, c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "Validation failed.",
			"errors":  echo.Map{"seller_id": []string{"The selected seller must belong to this store."}},
		})
	}

	return &seller, nil
}

// WithdrawInventory moves custody of stock from the store to a seller
func WithdrawInventory(c echo.Context) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	log := logger.FromContext(c)
	actor := currentUser(c)

	store, err := resolveStore(c)
	if store == nil {
		return err
	}

	var req InventoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if errs := validateItems(req.Items); errs.Any() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "Validation failed.", "errors": errs})
	}

	seller, err := resolveEffectiveSeller(c, store, actor, req.SellerID)
	if seller == nil {
		return err
	}

	holdings, err := inventoryService().Withdraw(c.Request().Context(), store, seller, req.Items)
	if err != nil {
		prometheus.RecordInventoryOperation("withdraw", "rejected")
		if _, ok := service.AsValidationErrors(err); !ok {
			log.Error("Failed to withdraw inventory",
				zap.Uint("store_id", store.ID),
				zap.Uint("seller_id", seller.ID),
				zap.Error(err))
		}
		return respondServiceError(c, err)
	}

	prometheus.RecordInventoryOperation("withdraw", "completed")
	log.Info("Inventory withdrawn",
		zap.Uint("store_id", store.ID),
		zap.Uint("seller_id", seller.ID),
		zap.Int("items", len(holdings)))

	// Available quantities changed
	invalidate(c, "store_products", 0)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Products withdrawn successfully.",
		"data":    holdings,
	})
}

// ReturnInventory moves custody of stock back from a seller to the store
func ReturnInventory(c echo.Context) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	log := logger.FromContext(c)
	actor := currentUser(c)

	store, err := resolveStore(c)
	if store == nil {
		return err
	}

	var req InventoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if errs := validateItems(req.Items); errs.Any() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "Validation failed.", "errors": errs})
	}

	seller, err := resolveEffectiveSeller(c, store, actor, req.SellerID)
	if seller == nil {
		return err
	}

	holdings, err := inventoryService().Return(c.Request().Context(), store, seller, req.Items)
	if err != nil {
		prometheus.RecordInventoryOperation("return", "rejected")
		if _, ok := service.AsValidationErrors(err); !ok {
			log.Error("Failed to return inventory",
				zap.Uint("store_id", store.ID),
				zap.Uint("seller_id", seller.ID),
				zap.Error(err))
		}
		return respondServiceError(c, err)
	}

	prometheus.RecordInventoryOperation("return", "completed")
	log.Info("Inventory returned",
		zap.Uint("store_id", store.ID),
		zap.Uint("seller_id", seller.ID),
		zap.Int("items", len(holdings)))

	invalidate(c, "store_products", 0)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Products returned successfully.",
		"data":    holdings,
	})
}

// ListStoreInventory returns every seller's holdings for a store (admins and
// managers only)
func ListStoreInventory(c echo.Context) error {
	user := currentUser(c)

	store, err := resolveStore(c)
	if store == nil {
		return err
	}
	if user.IsSeller() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "sellers cannot access this endpoint"})
	}

	page, perPage := pageParams(c)
	holdings, total, err := inventoryService().ListForStore(store, page, perPage)
	if err != nil {
		logger.FromContext(c).Error("Failed to list store inventory", zap.Uint("store_id", store.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve seller inventory"})
	}

	return c.JSON(http.StatusOK, paginated(holdings, page, perPage, total))
}

// ListUserInventory returns one seller's holdings. Sellers see only their
// own; managers see sellers of their store.
func ListUserInventory(c echo.Context) error {
	actor := currentUser(c)

	var seller model.User
	if err := database.GetDB().First(&seller, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	}

	if actor.IsSeller() && actor.ID != seller.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only view your own inventory"})
	}
	if actor.IsManager() {
		if seller.StoreID == nil || !actor.BelongsToStore(*seller.StoreID) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only view inventory of sellers in your store"})
		}
	}

	page, perPage := pageParams(c)
	holdings, total, err := inventoryService().ListForUser(&seller, page, perPage)
	if err != nil {
		logger.FromContext(c).Error("Failed to list seller inventory", zap.Uint("seller_id", seller.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve seller inventory"})
	}

	return c.JSON(http.StatusOK, paginated(holdings, page, perPage, total))
}

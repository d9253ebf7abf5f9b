package events

import (
	"context"
	"time"
)

// SaleItemEvent is one line of a completed sale.
type SaleItemEvent struct {
	StoreProductID uint    `json:"store_product_id"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	Subtotal       float64 `json:"subtotal"`
}

// SaleCompleted is published after a sale transaction commits.
type SaleCompleted struct {
	SaleID      uint            `json:"sale_id"`
	StoreID     uint            `json:"store_id"`
	UserID      uint            `json:"user_id"`
	CustomerID  *uint           `json:"customer_id,omitempty"`
	TotalAmount float64         `json:"total_amount"`
	SaleDate    time.Time       `json:"sale_date"`
	Items       []SaleItemEvent `json:"items"`
}

// Publisher publishes domain events to interested consumers.
type Publisher interface {
	PublishSaleCompleted(ctx context.Context, event SaleCompleted) error
}

// NopPublisher discards every event. Used when AMQP is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishSaleCompleted(ctx context.Context, event SaleCompleted) error {
	return nil
}

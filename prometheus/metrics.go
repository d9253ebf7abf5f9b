package prometheus

import (
	"time"

	"github.com/DeiVid1337/Boss-Pods-Api/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Sale metrics
	SalesCounter     prometheus.CounterVec
	SaleAmountTotal  prometheus.Counter
	SaleItemsCounter prometheus.Counter

	// Seller inventory metrics
	InventoryOperationsCounter prometheus.CounterVec

	// Stock level metrics
	StockQuantityGauge prometheus.GaugeVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(appConfig *config.Config) {
	prefix := appConfig.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	SalesCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_sales_total",
			Help: "Total number of sale transactions",
		},
		[]string{"store_id", "result"},
	)

	SaleAmountTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_sale_amount_total",
			Help: "Cumulative amount of completed sales",
		},
	)

	SaleItemsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_sale_items_total",
			Help: "Total number of units sold",
		},
	)

	InventoryOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_inventory_operations_total",
			Help: "Total number of seller inventory operations",
		},
		[]string{"operation", "result"},
	)

	StockQuantityGauge = *promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_stock_quantity",
			Help: "Current stock quantity per store product",
		},
		[]string{"store_id", "store_product_id"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordSale increments the sale counter for a store
func RecordSale(storeID string, result string) {
	SalesCounter.WithLabelValues(storeID, result).Inc()
}

// RecordInventoryOperation increments the counter for withdraw/return operations
func RecordInventoryOperation(operation string, result string) {
	InventoryOperationsCounter.WithLabelValues(operation, result).Inc()
}

// UpdateStockQuantity updates the gauge for a store product's stock level
func UpdateStockQuantity(storeID string, storeProductID string, quantity float64) {
	StockQuantityGauge.WithLabelValues(storeID, storeProductID).Set(quantity)
}

// RecordAuthError increments the authentication error counter
func RecordAuthError() {
	AuthErrorsCounter.Inc()
}

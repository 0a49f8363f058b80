// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the storefront.
// It tracks order creation, payment activity, and catalog stock health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	orderCreatedTotal *Counter
	orderAmountTotal  *Counter
	paymentTotal      *Counter
	webhookTotal      *Counter

	// Gauge metrics (point-in-time values)
	lowStockCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	stockProvider StockMetricsProvider
}

// StockMetricsProvider provides catalog stock data for periodic metrics
// collection. The interface lets the telemetry layer query stock state
// without depending on the catalog domain directly.
type StockMetricsProvider interface {
	// GetLowStockCount returns the count of active products at or below threshold.
	GetLowStockCount(ctx context.Context, threshold int) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	CollectInterval   time.Duration // Default: 5 minutes
	LowStockThreshold int           // Default: 5
	StockProvider     StockMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		stockProvider: cfg.StockProvider,
	}

	var err error

	// Order metrics
	bm.orderCreatedTotal, err = NewCounter(
		cfg.Meter,
		"storefront_order_created_total",
		"Total number of orders placed",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderAmountTotal, err = NewCounter(
		cfg.Meter,
		"storefront_order_amount_total",
		"Total order amount in minor currency units",
		"{minor_units}",
	)
	if err != nil {
		return nil, err
	}

	// Payment metrics
	bm.paymentTotal, err = NewCounter(
		cfg.Meter,
		"storefront_payment_total",
		"Total number of payment state transitions",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	bm.webhookTotal, err = NewCounter(
		cfg.Meter,
		"storefront_webhook_total",
		"Total number of gateway webhook events received",
		"{events}",
	)
	if err != nil {
		return nil, err
	}

	// Catalog gauge metrics
	bm.lowStockCount, err = NewGauge(
		cfg.Meter,
		"storefront_low_stock_count",
		"Number of active products at or below the low stock threshold",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Order Metrics
// =============================================================================

// RecordOrderCreated records an order placement event.
// This should be called from the application layer when checkout succeeds.
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context, paymentMethod string) {
	bm.orderCreatedTotal.Inc(ctx,
		AttrPaymentMethod.String(paymentMethod),
	)
}

// RecordOrderAmount records the order amount.
// Amount must be in the smallest currency unit.
func (bm *BusinessMetrics) RecordOrderAmount(ctx context.Context, paymentMethod string, amountMinor int64) {
	bm.orderAmountTotal.Add(ctx, amountMinor,
		AttrPaymentMethod.String(paymentMethod),
	)
}

// RecordOrderWithAmount is a convenience method that records both order count and amount.
func (bm *BusinessMetrics) RecordOrderWithAmount(ctx context.Context, paymentMethod string, amount decimal.Decimal) {
	bm.RecordOrderCreated(ctx, paymentMethod)

	amountMinor := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordOrderAmount(ctx, paymentMethod, amountMinor)
}

// =============================================================================
// Payment Metrics
// =============================================================================

// PaymentOutcome represents the outcome of a payment for metrics labeling.
type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "success"
	PaymentOutcomeFailed  PaymentOutcome = "failed"
)

// RecordPayment records a payment state transition.
// This should be called when a signature verification or webhook settles a payment.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, paymentMethod string, outcome PaymentOutcome) {
	bm.paymentTotal.Inc(ctx,
		AttrPaymentMethod.String(paymentMethod),
		AttrPaymentStatus.String(string(outcome)),
	)
}

// RecordWebhook records a received gateway webhook event by processing result.
func (bm *BusinessMetrics) RecordWebhook(ctx context.Context, eventType, result string) {
	bm.webhookTotal.Inc(ctx,
		AttrWebhookEventType.String(eventType),
		AttrWebhookResult.String(result),
	)
}

// =============================================================================
// Catalog Metrics
// =============================================================================

// RecordLowStockCount records the number of active products at or below the
// low stock threshold. This is a gauge updated by periodic collection.
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, count int64) {
	bm.lowStockCount.Record(ctx, count)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects stock metrics every interval (default: 5 minutes).
// This is non-blocking. Use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, threshold int, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		if threshold <= 0 {
			threshold = 5
		}

		go bm.runPeriodicCollection(ctx, threshold, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, threshold int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectStockMetrics(ctx, threshold)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectStockMetrics(ctx, threshold)
		}
	}
}

func (bm *BusinessMetrics) collectStockMetrics(ctx context.Context, threshold int) {
	if bm.stockProvider == nil {
		bm.logger.Debug("No stock provider configured, skipping stock metrics collection")
		return
	}

	count, err := bm.stockProvider.GetLowStockCount(ctx, threshold)
	if err != nil {
		bm.logger.Warn("Failed to get low stock count", zap.Error(err))
		return
	}

	bm.RecordLowStockCount(ctx, count)
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedProduct struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func newTracedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedProduct{}))
	return db
}

func newSpanRecorder() (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)), recorder
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)

	// The defaults must not leak statement text or bind values
	assert.False(t, cfg.LogFullSQL)
	assert.True(t, cfg.WithoutVariables)
}

func TestRegisterOtelGorm_Disabled(t *testing.T) {
	db := newTracedDB(t)

	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))

	// Disabled registration installs nothing, so repeating it is harmless
	require.NoError(t, plugin.RegisterOtelGorm(db))
}

func TestRegisterOtelGorm_Enabled(t *testing.T) {
	db := newTracedDB(t)

	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "sqlite",
	}, zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))

	// A second registration collides on plugin and callback names
	assert.Error(t, plugin.RegisterOtelGorm(db))
}

func TestAnnotateSpan_RowsAndTable(t *testing.T) {
	db := newTracedDB(t)
	tp, recorder := newSpanRecorder()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "sqlite",
	}, zap.NewNop())

	ctx, span := tp.Tracer("test").Start(context.Background(), "create-products")
	result := db.WithContext(ctx).Create(&[]tracedProduct{{Name: "mug"}, {Name: "kettle"}, {Name: "lamp"}})
	require.NoError(t, result.Error)

	plugin.annotateSpan(result.Statement.DB)
	span.End()

	spans := recorder.Ended()
	require.NotEmpty(t, spans)

	var rows int64
	table := ""
	for _, attr := range spans[0].Attributes() {
		switch attr.Key {
		case "db.rows_affected":
			rows = attr.Value.AsInt64()
		case "db.sql.table":
			table = attr.Value.AsString()
		}
	}
	assert.EqualValues(t, 3, rows)
	assert.Equal(t, "traced_products", table)
}

func TestAnnotateSpan_SlowQueryEvent(t *testing.T) {
	db := newTracedDB(t)
	tp, recorder := newSpanRecorder()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Nanosecond,
		DBSystem:        "sqlite",
	}, zap.NewNop())

	ctx, span := tp.Tracer("test").Start(context.Background(), "slow-lookup")
	ctx = context.WithValue(ctx, queryStartTimeKey, time.Now().Add(-time.Second))

	tx := db.WithContext(ctx)
	var p tracedProduct
	tx.First(&p)

	plugin.annotateSpan(tx.Statement.DB)
	span.End()

	spans := recorder.Ended()
	require.NotEmpty(t, spans)

	slow := false
	event := false
	for _, attr := range spans[0].Attributes() {
		if attr.Key == "db.slow_query" && attr.Value.AsBool() {
			slow = true
		}
	}
	for _, ev := range spans[0].Events() {
		if ev.Name == "slow_query_warning" {
			event = true
		}
	}
	assert.True(t, slow)
	assert.True(t, event)
}

func TestAnnotateSpan_RecordNotFoundIsNotAnError(t *testing.T) {
	db := newTracedDB(t)
	tp, recorder := newSpanRecorder()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "sqlite",
	}, zap.NewNop())

	ctx, span := tp.Tracer("test").Start(context.Background(), "missed-lookup")
	var p tracedProduct
	tx := db.WithContext(ctx).First(&p, 99999)
	require.Error(t, tx.Error)

	plugin.annotateSpan(tx)
	span.End()

	spans := recorder.Ended()
	require.NotEmpty(t, spans)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestAnnotateSpan_SafeWithoutSpanOrContext(t *testing.T) {
	db := newTracedDB(t)
	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

	// No recording span in the context
	assert.NotPanics(t, func() {
		plugin.annotateSpan(db.WithContext(context.Background()))
	})
	// Fresh session with no context at all
	assert.NotPanics(t, func() {
		plugin.annotateSpan(db.Session(&gorm.Session{NewDB: true}))
	})
}

package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig configures database span instrumentation.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBSystem        string
}

const queryStartKey = "garage:query_start"

// RegisterDBTracing installs otelgorm on db plus callbacks that annotate
// spans with row counts and flag slow statements.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	t := &slowQueryTracker{threshold: cfg.SlowQueryThresh, logger: logger}
	cb := db.Callback()
	type processor struct {
		op     string
		before func(string) callbackRegisterer
		after  func(string) callbackRegisterer
	}
	procs := []processor{
		{"create", func(n string) callbackRegisterer { return cb.Create().Before(n) }, func(n string) callbackRegisterer { return cb.Create().After(n) }},
		{"query", func(n string) callbackRegisterer { return cb.Query().Before(n) }, func(n string) callbackRegisterer { return cb.Query().After(n) }},
		{"update", func(n string) callbackRegisterer { return cb.Update().Before(n) }, func(n string) callbackRegisterer { return cb.Update().After(n) }},
		{"delete", func(n string) callbackRegisterer { return cb.Delete().Before(n) }, func(n string) callbackRegisterer { return cb.Delete().After(n) }},
		{"row", func(n string) callbackRegisterer { return cb.Row().Before(n) }, func(n string) callbackRegisterer { return cb.Row().After(n) }},
		{"raw", func(n string) callbackRegisterer { return cb.Raw().Before(n) }, func(n string) callbackRegisterer { return cb.Raw().After(n) }},
	}
	for _, p := range procs {
		if err := p.before("gorm:"+p.op).Register("garage:before_"+p.op, t.before); err != nil {
			return err
		}
		if err := p.after("gorm:"+p.op).Register("garage:after_"+p.op, t.after); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

type callbackRegisterer interface {
	Register(name string, fn func(*gorm.DB)) error
}

type slowQueryTracker struct {
	threshold time.Duration
	logger    *zap.Logger
}

func (t *slowQueryTracker) before(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (t *slowQueryTracker) after(db *gorm.DB) {
	if db.Statement == nil || db.Statement.Context == nil {
		return
	}
	span := trace.SpanFromContext(db.Statement.Context)
	recording := span.IsRecording()

	if recording {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.RecordError(db.Error)
			span.SetStatus(codes.Error, db.Error.Error())
		}
	}

	v, ok := db.InstanceGet(queryStartKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	if elapsed <= t.threshold {
		return
	}
	if recording {
		span.SetAttributes(attribute.Bool("db.slow_query", true))
		span.AddEvent("slow_query", trace.WithAttributes(attribute.Int64("duration_ms", elapsed.Milliseconds())))
	}
	t.logger.Warn("Slow query",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
	)
}

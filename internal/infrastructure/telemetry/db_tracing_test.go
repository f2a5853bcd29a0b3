package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type probe struct {
	ID   uint
	Name string
}

func TestRegisterDBTracing(t *testing.T) {
	t.Run("disabled leaves callbacks untouched", func(t *testing.T) {
		db := openSQLite(t)
		require.NoError(t, RegisterDBTracing(db, DBTracingConfig{}, zap.NewNop()))
		assert.Nil(t, db.Callback().Query().Get("garage:after_query"))
	})

	t.Run("flags slow statements", func(t *testing.T) {
		withRecorder(t)
		core, logs := observer.New(zap.WarnLevel)
		db := openSQLite(t)
		require.NoError(t, RegisterDBTracing(db, DBTracingConfig{Enabled: true, SlowQueryThresh: time.Nanosecond}, zap.New(core)))
		assert.NotNil(t, db.Callback().Query().Get("garage:after_query"))

		require.NoError(t, db.AutoMigrate(&probe{}))
		require.NoError(t, db.Create(&probe{Name: "x"}).Error)
		var got []probe
		require.NoError(t, db.Find(&got).Error)

		assert.NotZero(t, logs.FilterMessage("Slow query").Len())
	})
}

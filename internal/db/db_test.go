package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	"robot-factory-backend/config"
	"robot-factory-backend/internal/model"
)

func TestInit_SQLiteMigrates(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      "file:db_init_test?mode=memory&cache=shared",
		LogLevel: "silent",
	}

	gormDB, err := Init(cfg, zap.NewNop())
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	defer sqlDB.Close()

	for _, m := range []any{&model.Robot{}, &model.Customer{}, &model.Order{}} {
		assert.True(t, gormDB.Migrator().HasTable(m))
	}
}

func TestInit_UnknownDriver(t *testing.T) {
	_, err := Init(&config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, logLevel("silent"))
	assert.Equal(t, logger.Error, logLevel("error"))
	assert.Equal(t, logger.Info, logLevel("info"))
	assert.Equal(t, logger.Warn, logLevel("anything"))
}

package config

import (
	"errors"
	"testing"

	"il2-stats/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type row struct {
	ID   uint
	Name string
}

func TestOpenDBLogsErrorsButNotMissingRows(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.Replace(zap.New(core))
	t.Cleanup(func() { logger.Replace(zap.NewNop()) })

	cfg := &Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = ":memory:"
	db, err := OpenDB(cfg)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	if err := db.AutoMigrate(&row{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	before := logs.Len()
	var r row
	if err := db.First(&r, 42).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err=%v want=%v", err, gorm.ErrRecordNotFound)
	}
	if n := logs.Len() - before; n != 0 {
		t.Fatalf("missing row logged %d lines", n)
	}

	if err := db.Exec("SELECT * FROM no_such_table").Error; err == nil {
		t.Fatalf("query on a missing table succeeded")
	}
	if logs.FilterLoggerName("gorm").Len() == 0 {
		t.Fatalf("query error not logged")
	}
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Driver = "oracle"
	if _, err := OpenDB(cfg); err == nil {
		t.Fatalf("unknown driver accepted")
	}
}

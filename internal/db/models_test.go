package db

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// The model tags must migrate on sqlite as well as postgres: the service tests
// run against an in-memory sqlite database, so a postgres-only column default
// would take the whole suite down at setup.
func TestModelsMigrateOnSQLite(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open("file:models_migrate?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(Models()...); err != nil {
		t.Fatalf("migrating models: %v", err)
	}
}

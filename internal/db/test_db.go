package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB returns a migrated in-memory SQLite database. It is pinned to
// one connection because every new connection would open an empty database.
func SetupTestDB() (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         NewQueryLogger(0).LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open test database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("test database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := MigrateDB(conn); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate test database: %w", err)
	}
	return conn, nil
}

func CleanupTestDB(conn *gorm.DB) {
	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.Close()
	}
}

// ResetTables deletes every row of every migrated table, children first.
func ResetTables(conn *gorm.DB) error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		stmt := &gorm.Statement{DB: conn}
		if err := stmt.Parse(models[i]); err != nil {
			return err
		}
		if err := conn.Exec("DELETE FROM " + stmt.Schema.Table).Error; err != nil {
			return fmt.Errorf("reset %s: %w", stmt.Schema.Table, err)
		}
	}
	return nil
}

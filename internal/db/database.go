package db

import (
	"context"
	"fmt"
	"time"

	"github.com/foodmarket/provision-backend/config"
	appLogger "github.com/foodmarket/provision-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Open connects to postgres, applies the pool settings and verifies the
// connection with a ping.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*gorm.DB, error) {
	appLogger.Info("Connecting to database", map[string]interface{}{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.DBName,
		"user":     cfg.User,
	})

	conn, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         NewQueryLogger(cfg.SlowQuery),
		TranslateError: true,
		// 방문 날짜와 분기 키는 저장 전에 매장 시간대로 계산된다
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(positiveOr(cfg.MaxIdleConns, 5))
	sqlDB.SetMaxOpenConns(positiveOr(cfg.MaxOpenConns, 20))
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	appLogger.Info("Database connection established successfully", map[string]interface{}{
		"max_idle_conns":    positiveOr(cfg.MaxIdleConns, 5),
		"max_open_conns":    positiveOr(cfg.MaxOpenConns, 20),
		"conn_max_lifetime": cfg.ConnMaxLifetime.String(),
	})
	return conn, nil
}

// Initialize opens the shared connection used by the commands.
func Initialize(cfg *config.DatabaseConfig) error {
	conn, err := Open(context.Background(), cfg)
	if err != nil {
		return err
	}
	DB = conn
	return nil
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return DB
}

func positiveOr(n, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}

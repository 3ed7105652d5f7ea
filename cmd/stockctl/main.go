package main

import (
	"context"
	"log"
	"time"

	"github.com/gestionale/stock-service/config"
	"github.com/gestionale/stock-service/internal/logger"
	"github.com/gestionale/stock-service/internal/postgres"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// stockctl bootstraps the stock schema and verifies database connectivity.
// The desktop application links the packages under internal/ directly; this
// binary exists for deployment and operations.
func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	appLogger, err := logger.New(&logger.Config{
		Level:             cfg.Logger.Level,
		Encoding:          cfg.Logger.Encoding,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer appLogger.Sync()

	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("connected to PostgreSQL", zap.String("db_name", cfg.Postgres.DBName))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ensureSchema(ctx, db); err != nil {
		appLogger.Fatal("schema bootstrap failed", zap.Error(err))
	}
	appLogger.Info("stock schema is up to date")
}

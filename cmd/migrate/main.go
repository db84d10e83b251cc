package main

import (
	"database/sql"
	"flag"
	"log"
	"os"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"prediction-escrow/internal/config"
	"prediction-escrow/internal/database"
	"prediction-escrow/internal/logger"
)

func main() {
	sqlFile := flag.String("sql", "", "raw SQL file to apply after automigration (postgres only)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := database.Connect(cfg.Database.Driver, cfg.GetDSN(), zl); err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.AutoMigrate(database.GetDB(), zl); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}

	if *sqlFile == "" {
		return
	}
	if cfg.Database.Driver != "postgres" {
		zl.Fatal("raw SQL migrations need DB_DRIVER=postgres", zap.String("driver", cfg.Database.Driver))
	}

	sqlBytes, err := os.ReadFile(*sqlFile)
	if err != nil {
		zl.Fatal("failed to read migration file", zap.String("file", *sqlFile), zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		zl.Fatal("failed to open postgres", zap.Error(err))
	}
	defer db.Close()

	zl.Info("applying migration", zap.String("file", *sqlFile))
	if _, err := db.Exec(string(sqlBytes)); err != nil {
		zl.Fatal("failed to apply migration", zap.String("file", *sqlFile), zap.Error(err))
	}
	zl.Info("migration applied", zap.String("file", *sqlFile))
}

package main

import (
	"github.com/SeakMengs/DossierFlow/internal/config"
	"github.com/SeakMengs/DossierFlow/internal/database"
	"github.com/SeakMengs/DossierFlow/internal/env"
	"github.com/SeakMengs/DossierFlow/internal/model"
	"github.com/SeakMengs/DossierFlow/internal/util"
)

func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)

	logger.Infof("Database configuration: %s:%s/%s", cfg.DB.DB_HOST, cfg.DB.DB_PORT, cfg.DB.DB_DATABASE)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	// emails are compared case-insensitively
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS citext`).Error; err != nil {
		logger.Panic(err)
	}

	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		logger.Panic(err)
	}
	logger.Info("Migration done")
}

package main

import (
	"context"
	"time"

	"sphinx_backend/internal/model"
	"sphinx_backend/internal/service"
	"sphinx_backend/pkg/config"
	"sphinx_backend/pkg/database"
	"sphinx_backend/pkg/logger"
	"sphinx_backend/pkg/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.LogLevel)

	if err := database.InitDB(cfg.Database.URL, log); err != nil {
		log.WithError(err).Fatal("could not connect to database")
	}
	db := database.GetDB()
	if err := database.MigrateDatabase(db, log, model.All()...); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	seedLog := logger.Component(log, "seed")
	if cfg.Seed.AdminEmail != "" {
		if _, _, err := seed.Admin(ctx, db, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, seedLog); err != nil {
			log.WithError(err).Fatal("could not seed admin")
		}
	} else {
		seedLog.Warn("SEED_ADMIN_EMAIL is not set, skipping admin account")
	}

	catalog := service.NewCatalogService(db, logger.Component(log, "catalog"))
	if _, err := seed.Services(ctx, db, catalog, seedLog); err != nil {
		log.WithError(err).Fatal("could not seed services")
	}

	seedLog.Info("seeding complete")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"sphinx_backend/internal/controller"
	"sphinx_backend/internal/metrics"
	"sphinx_backend/internal/middleware"
	"sphinx_backend/internal/model"
	"sphinx_backend/internal/service"
	"sphinx_backend/pkg/config"
	"sphinx_backend/pkg/cron"
	"sphinx_backend/pkg/database"
	"sphinx_backend/pkg/email"
	"sphinx_backend/pkg/logger"
	"sphinx_backend/pkg/storage"
	"sphinx_backend/pkg/utils/jwt"
)

const (
	shutdownTimeout = 10 * time.Second
	poolStatsPeriod = 15 * time.Second
	// the largest request is a portfolio with a main image and a full gallery
	maxGalleryRequest = controller.MaxGalleryImages + 1
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	if err := database.InitDB(cfg.Database.URL, log); err != nil {
		log.WithError(err).Fatal("could not connect to database")
	}
	db := database.GetDB()
	if err := database.MigrateDatabase(db, log, model.All()...); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	jwt.Configure(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	sender, err := email.NewSender(ctx, cfg.Email, logger.Component(log, "email"))
	if err != nil {
		log.WithError(err).Fatal("could not initialize email provider")
	}
	mailer, err := email.NewService(sender, email.Options{
		AdminEmail:   cfg.Email.AdminEmail,
		CompanyName:  cfg.Company.Name,
		CompanyPhone: cfg.Company.Phone,
	}, logger.Component(log, "email"))
	if err != nil {
		log.WithError(err).Fatal("could not initialize email service")
	}
	log.WithField("provider", sender.Name()).Info("Email service initialized")

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("could not initialize upload storage")
	}

	authService := service.NewAuthService(db, logger.Component(log, "auth"))
	statsService := service.NewStatsService(db)
	controller.InitAuthController(authService, cfg.Server.CookieSecure)
	controller.InitContactController(service.NewContactService(db, mailer, logger.Component(log, "contact")))
	controller.InitQuoteController(service.NewQuoteService(db, mailer, logger.Component(log, "quote")))
	controller.InitServiceController(service.NewCatalogService(db, logger.Component(log, "catalog")))
	controller.InitPortfolioController(service.NewPortfolioService(db, logger.Component(log, "portfolio")))
	controller.InitBlogController(service.NewBlogService(db, logger.Component(log, "blog")))
	controller.InitStatsController(statsService, db)

	if cfg.Digest.Schedule != "" {
		digestLog := logger.Component(log, "digest")
		scheduler, err := cron.Start(cfg.Digest.Schedule, cron.NewPendingDigest(statsService, mailer, digestLog), digestLog)
		if err != nil {
			log.WithError(err).Fatal("could not start digest cron")
		}
		defer scheduler.Stop()
	}

	httpLog := logger.Component(log, "http")
	app := fiber.New(fiber.Config{
		AppName:      "Sphinx Landscapes API",
		ErrorHandler: middleware.ErrorHandler(httpLog, !cfg.IsProduction()),
		BodyLimit:    int(cfg.Storage.MaxFileSize)*maxGalleryRequest + 1024*1024,
		ProxyHeader:  fiber.HeaderXForwardedFor,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		Output: log.WriterLevel(logrus.InfoLevel),
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.ClientURL,
		AllowCredentials: true,
	}))
	app.Use(metrics.Middleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	if local, ok := store.(*storage.Local); ok {
		app.Static("/uploads", local.Dir())
	}

	uploads := middleware.NewUploader(store, cfg.Storage.MaxFileSize, logger.Component(log, "upload"))
	controller.SetupRoutes(app, authService, uploads)
	app.Use(middleware.NotFound)

	go reportPoolStats(db)

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Server.Port, "env": cfg.Env}).Info("Server is running")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func reportPoolStats(db *gorm.DB) {
	ticker := time.NewTicker(poolStatsPeriod)
	defer ticker.Stop()
	for range ticker.C {
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		stats := sqlDB.Stats()
		metrics.UpdateDBConnections(stats.OpenConnections, stats.Idle)
	}
}

package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sphinx_backend/internal/service"
	"sphinx_backend/pkg/database"
)

var (
	statsService *service.StatsService
	healthDB     *gorm.DB
)

func InitStatsController(svc *service.StatsService, db *gorm.DB) {
	statsService = svc
	healthDB = db
}

func GetDashboardStats(c *fiber.Ctx) error {
	stats, err := statsService.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return sendData(c, stats)
}

// Health reports liveness, and 503 when the database does not answer.
func Health(c *fiber.Ctx) error {
	status, code := "ok", fiber.StatusOK
	if healthDB != nil {
		if err := database.HealthCheck(healthDB); err != nil {
			status, code = "degraded", fiber.StatusServiceUnavailable
		}
	}
	return c.Status(code).JSON(fiber.Map{
		"success": code == fiber.StatusOK,
		"status":  status,
		"time":    time.Now().UTC(),
	})
}

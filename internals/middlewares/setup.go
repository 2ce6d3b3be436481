package middlewares

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"mealku_backend/internals/middlewares/logger"
)

// SetupMiddlewares memasang middleware global (urutan penting: recovery paling luar)
func SetupMiddlewares(app *fiber.App) {
	log.Println("[INFO] Setting up global middlewares...")
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
	app.Use(logger.LoggerMiddleware())
	app.Use(GlobalRateLimiter())
}

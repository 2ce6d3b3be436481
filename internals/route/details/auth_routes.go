package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authController "mealku_backend/internals/features/users/auth/controller"
	"mealku_backend/internals/middlewares"
	authMiddleware "mealku_backend/internals/middlewares/auth"
)

func AuthRoutes(app *fiber.App, db *gorm.DB) {
	ctrl := authController.NewAuthController(db)

	auth := app.Group("/api/auth")
	auth.Post("/login", middlewares.LoginRateLimiter(), ctrl.Login)

	authed := auth.Group("", authMiddleware.AuthMiddleware(db))
	authed.Post("/logout", ctrl.Logout)
	authed.Get("/profile", ctrl.Profile)
	authed.Post("/refresh", ctrl.Refresh)
	authed.Get("/verify", ctrl.Verify)
}

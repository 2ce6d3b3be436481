package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mealku_backend/internals/constants"
	bulkController "mealku_backend/internals/features/users/bulk_upload/controller"
	userController "mealku_backend/internals/features/users/users/controller"
	authMiddleware "mealku_backend/internals/middlewares/auth"
)

func UserRoutes(app *fiber.App, db *gorm.DB) {
	ctrl := userController.NewUserController(db)
	bulk := bulkController.NewBulkUploadController(db)

	users := app.Group("/api/users")

	// Public self-registration
	users.Post("/register", ctrl.SelfRegister)

	authed := users.Group("", authMiddleware.AuthMiddleware(db))

	// Self-service
	authed.Post("/me", ctrl.SelfUpdate)
	authed.Post("/me/campus", ctrl.SetMyCampus)
	authed.Get("/all", ctrl.GetAllBasic)

	// Admin & super admin
	adminOnly := authMiddleware.OnlyRoles(
		constants.RoleErrorAdmin("manajemen user"),
		constants.AdminAndAbove...,
	)
	authed.Get("/", adminOnly, ctrl.GetUsers)
	authed.Get("/all/admins", adminOnly, ctrl.GetAdmins)
	authed.Post("/", adminOnly, ctrl.CreateUser)
	authed.Post("/:userId/roles", adminOnly, ctrl.AssignRoles)
	authed.Post("/:userId/campus", adminOnly, ctrl.SetUserCampus)
	authed.Post("/:userId", adminOnly, ctrl.UpdateUser)
	authed.Delete("/:userId/delete", adminOnly, ctrl.DeleteUser)

	// Bulk enrollment — super admin saja
	bulkGroup := app.Group("/api/bulk-upload",
		authMiddleware.AuthMiddleware(db),
		authMiddleware.OnlyRoles(
			constants.RoleErrorSuper("bulk enrollment"),
			constants.SuperAdminOnly...,
		),
	)
	bulkGroup.Post("/students", bulk.UploadStudents)
}

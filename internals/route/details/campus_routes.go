package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mealku_backend/internals/constants"
	campusController "mealku_backend/internals/features/campus/campuses/controller"
	changeController "mealku_backend/internals/features/campus/change_requests/controller"
	slotController "mealku_backend/internals/features/campus/meal_slots/controller"
	authMiddleware "mealku_backend/internals/middlewares/auth"
)

func CampusRoutes(app *fiber.App, db *gorm.DB) {
	campusCtrl := campusController.NewCampusController(db)
	slotCtrl := slotController.NewCampusMealSlotController(db)
	changeCtrl := changeController.NewChangeRequestController(db)

	authed := authMiddleware.AuthMiddleware(db)

	// Campus listing
	app.Get("/api/campuses", authed, campusCtrl.GetCampuses)

	// Konfigurasi slot per campus
	slots := app.Group("/api/campus-meal-slots", authed)
	slots.Get("/:campusId", slotCtrl.GetByCampus)
	slots.Post("/",
		authMiddleware.OnlyRoles(
			constants.RoleErrorAdmin("konfigurasi meal slot"),
			constants.AdminAndAbove...,
		),
		slotCtrl.Upsert,
	)

	// Workflow pindah campus
	changes := app.Group("/api/campus-change-requests", authed)
	changes.Post("/",
		authMiddleware.OnlyRoles(
			constants.RoleErrorStudent("pengajuan pindah campus"),
			constants.StudentOnly...,
		),
		changeCtrl.Create,
	)
	superOnly := authMiddleware.OnlyRoles(
		constants.RoleErrorSuper("review pindah campus"),
		constants.SuperAdminOnly...,
	)
	changes.Get("/", superOnly, changeCtrl.List)
	changes.Post("/:id/approve", superOnly, changeCtrl.Approve)
	changes.Post("/:id/reject", superOnly, changeCtrl.Reject)
}

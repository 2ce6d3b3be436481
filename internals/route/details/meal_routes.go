package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mealku_backend/internals/constants"
	kitchenController "mealku_backend/internals/features/meals/kitchen/controller"
	mealItemController "mealku_backend/internals/features/meals/meal_items/controller"
	menuController "mealku_backend/internals/features/meals/menus/controller"
	qrController "mealku_backend/internals/features/meals/qr_tokens/controller"
	selectionController "mealku_backend/internals/features/meals/selections/controller"
	authMiddleware "mealku_backend/internals/middlewares/auth"
)

func MealRoutes(app *fiber.App, db *gorm.DB) {
	itemCtrl := mealItemController.NewMealItemController(db)
	menuCtrl := menuController.NewMenuController(db)
	selCtrl := selectionController.NewSelectionController(db)
	qrCtrl := qrController.NewQrTokenController(db)
	kitchenCtrl := kitchenController.NewKitchenController(db)

	authed := authMiddleware.AuthMiddleware(db)
	adminOnly := authMiddleware.OnlyRoles(
		constants.RoleErrorAdmin("manajemen menu"),
		constants.AdminAndAbove...,
	)
	studentOnly := authMiddleware.OnlyRoles(
		constants.RoleErrorStudent("pemilihan makan"),
		constants.StudentOnly...,
	)
	kitchenOnly := authMiddleware.OnlyRoles(
		constants.RoleErrorKitchen("dapur"),
		constants.KitchenAndAbove...,
	)

	// Master item makanan
	items := app.Group("/api/meal-items", authed)
	items.Get("/", itemCtrl.List)
	items.Post("/", adminOnly, itemCtrl.Create)

	// Menu harian
	menus := app.Group("/api/menus", authed)
	menus.Get("/me", menuCtrl.GetMine)
	menus.Get("/", menuCtrl.GetMenus)
	menus.Post("/", adminOnly, menuCtrl.Upsert)

	// Pemilihan makan
	selections := app.Group("/api/meal-selections", authed)
	selections.Post("/", studentOnly, selCtrl.Create)
	selections.Get("/me", selCtrl.GetMine)
	selections.Get("/admin/students/:id/history", adminOnly, selCtrl.GetStudentHistory)

	// QR token & receipt
	qr := app.Group("/api/qr-token", authed)
	qr.Get("/today", kitchenOnly, qrCtrl.Today)
	qr.Post("/scan", studentOnly, qrCtrl.Scan)
	qr.Post("/receive", studentOnly, qrCtrl.Receive)

	// Laporan dapur
	kitchen := app.Group("/api/kitchen", authed)
	kitchen.Get("/summary", kitchenOnly, kitchenCtrl.Summary)
	kitchen.Get("/super/summary",
		authMiddleware.OnlyRoles(
			constants.RoleErrorSuper("laporan lintas campus"),
			constants.SuperAdminOnly...,
		),
		kitchenCtrl.SuperSummary,
	)
}

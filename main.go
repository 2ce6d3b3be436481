package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"mealku_backend/internals/configs"
	databases "mealku_backend/internals/databases"
	"mealku_backend/internals/middlewares"
	routes "mealku_backend/internals/route"
)

func main() {
	// =======================
	// 1) ENV + DATABASE
	// =======================
	configs.LoadEnv()
	databases.ConnectDB()
	databases.TunePool()
	databases.WarmUp()

	if err := databases.Migrate(databases.DB); err != nil {
		log.Fatalf("❌ Gagal migrasi database: %v", err)
	}

	// =======================
	// 2) FIBER APP
	// =======================
	app := fiber.New(fiber.Config{
		AppName:     "Mealku Backend",
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
	})

	app.Use(requestid.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(etag.New())
	middlewares.SetupMiddlewares(app)

	// =======================
	// 3) ROUTES
	// =======================
	routes.SetupRoutes(app, databases.DB)

	// =======================
	// 4) START + GRACEFUL SHUTDOWN
	// =======================
	port := configs.GetEnv("PORT", "3000")

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("❌ Server gagal berjalan: %v", err)
		}
	}()
	log.Println("✅ Server berjalan di port", port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[INFO] Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Println("[ERROR] Gagal shutdown Fiber:", err)
	}
	if sqlDB, err := databases.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("[SUCCESS] Server berhenti dengan bersih")
}

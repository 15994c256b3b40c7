package main

import (
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/yourusername/vista/db"
	"github.com/yourusername/vista/handlers"
	"github.com/yourusername/vista/middleware"
	"github.com/yourusername/vista/models"
	"github.com/yourusername/vista/services"
)

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func main() {
	config, err := services.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := db.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	deviceRepo := models.NewDeviceRepository(db.DB)
	photoRepo := models.NewPhotoRepository(db.DB)

	storage, err := services.NewStorageFromEnv()
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}

	limiter := services.NewUploadLimiter(config.RateLimiting.Window(), config.RateLimiting.Capacity)
	defer limiter.Stop()

	authHandler := handlers.NewAuthHandler(deviceRepo)
	photoHandler := handlers.NewPhotoHandler(photoRepo, deviceRepo, storage, limiter, *config)
	exifHandler := handlers.NewExifHandler()

	app := fiber.New(fiber.Config{
		BodyLimit:    config.Server.BodyLimitMB * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New())

	if storage.IsLocal() {
		app.Static("/uploads", "./uploads", fiber.Static{
			Compress:      true,
			CacheDuration: 86400,
		})
	}

	api := app.Group("/api", middleware.DBPing())

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api.Post("/devices/register", authHandler.Register)
	api.Post("/devices/login", authHandler.Login)

	api.Post("/photos", middleware.Protected(), photoHandler.Upload)
	api.Get("/photos", middleware.Protected(), photoHandler.List)
	api.Get("/photos/:id", middleware.Protected(), photoHandler.Get)
	api.Delete("/photos/:id", middleware.Protected(), photoHandler.Delete)

	api.Post("/exif/decode", exifHandler.Decode)
	api.Post("/exif/inspect", exifHandler.Inspect)
	api.Post("/exif/strip", exifHandler.Strip)

	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api") {
			return fiber.ErrNotFound
		}
		return c.SendStatus(fiber.StatusNotFound)
	})

	addr := ":" + strconv.Itoa(config.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Fatal(app.Listen(addr))
}

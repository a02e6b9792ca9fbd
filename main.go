package main

import (
	"log"
	"os"
	"time"

	"larder-backend/config"
	"larder-backend/controllers"
	"larder-backend/models"
	"larder-backend/routes"
	"larder-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
)

func main() {
	// Переменные окружения из .env, если файл присутствует
	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используются переменные окружения системы")
	}

	// Загрузка справочника добычи, материалов и рецептов
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Инициализация базы данных
	db, err := models.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Автомиграция
	db.AutoMigrate(&models.Storage{}, &models.Batch{}, &models.Lot{}, &models.PantryEntry{}, &models.Settings{})

	// Создание Fiber приложения. UnescapePath нужен, чтобы имена складов
	// с пробелами доходили до обработчиков в исходном виде
	app := fiber.New(fiber.Config{
		UnescapePath: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
				"code":    code,
			})
		},
	})

	// Middleware
	app.Use(logger.New())

	// CORS настройки
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000,http://127.0.0.1:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Инициализация хаба событий
	hub := services.NewHub()
	go hub.Run()

	// Инициализация контроллеров
	authController := controllers.NewAuthController()
	storageController := controllers.NewStorageController(db, hub)
	perishableController := controllers.NewPerishableController(db, cfg, hub)
	materialController := controllers.NewMaterialController(db, cfg, hub)
	settingsController := controllers.NewSettingsController(db, hub)

	// Настройка маршрутов
	routes.SetupAuthRoutes(app, authController)
	routes.SetupStorageRoutes(app, storageController)
	routes.SetupPerishableRoutes(app, perishableController)
	routes.SetupMaterialRoutes(app, materialController)
	routes.SetupSettingsRoutes(app, settingsController)

	// WebSocket маршрут
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		hub.HandleWebSocket(c)
	}))

	// Общий health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"message":   "Larder Backend is running",
			"timestamp": time.Now().Unix(),
		})
	})

	// Запуск сервера
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	log.Fatal(app.Listen(":" + port))
}

package routes

import (
	"larder-backend/controllers"
	"larder-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupStorageRoutes настраивает маршруты для складов
func SetupStorageRoutes(app *fiber.App, storageController *controllers.StorageController) {
	// Группа маршрутов для складов
	storages := app.Group("/api/storages", utils.AuthMiddleware)

	// POST /api/storages - создать склад
	storages.Post("/", storageController.CreateStorage)

	// GET /api/storages - список складов гильдии
	storages.Get("/", storageController.GetStorages)

	// GET /api/storages/suggest - подсказки по именам складов
	storages.Get("/suggest", storageController.SuggestStorages)

	// GET /api/storages/:type/:name/inventory - инвентарь склада
	storages.Get("/:type/:name/inventory", storageController.GetInventory)
}

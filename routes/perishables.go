package routes

import (
	"larder-backend/controllers"
	"larder-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupPerishableRoutes настраивает маршруты для складов добычи
func SetupPerishableRoutes(app *fiber.App, perishableController *controllers.PerishableController) {
	// Группа маршрутов для складов добычи
	perishables := app.Group("/api/perishables", utils.AuthMiddleware)

	// GET /api/perishables/catalog - подсказки по разрешенной добыче
	perishables.Get("/catalog", perishableController.GetCatalog)

	// POST /api/perishables/:name/add - добавить добычу на склад
	perishables.Post("/:name/add", perishableController.AddPerishable)

	// POST /api/perishables/:name/take - списать добычу со склада
	perishables.Post("/:name/take", perishableController.TakePerishable)
}

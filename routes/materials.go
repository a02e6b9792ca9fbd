package routes

import (
	"larder-backend/controllers"
	"larder-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupMaterialRoutes настраивает маршруты для складов материалов
func SetupMaterialRoutes(app *fiber.App, materialController *controllers.MaterialController) {
	// Группа маршрутов для складов материалов
	materials := app.Group("/api/materials", utils.AuthMiddleware)

	// GET /api/materials/catalog - подсказки по разрешенным материалам
	materials.Get("/catalog", materialController.GetCatalog)

	// GET /api/materials/recipes - таблица рецептов
	materials.Get("/recipes", materialController.GetRecipes)

	// POST /api/materials/:name/add - добавить материал на склад
	materials.Post("/:name/add", materialController.AddMaterial)

	// POST /api/materials/:name/take - списать материал со склада
	materials.Post("/:name/take", materialController.TakeMaterial)

	// GET /api/materials/:name/pantry - содержимое кладовой склада
	materials.Get("/:name/pantry", materialController.GetPantry)

	// POST /api/materials/:name/pantry/take - списать продукт из кладовой
	materials.Post("/:name/pantry/take", materialController.TakePantryItem)

	// POST /api/materials/:name/craft - изготовить продукт по рецепту
	materials.Post("/:name/craft", materialController.Craft)
}

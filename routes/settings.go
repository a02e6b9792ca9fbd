package routes

import (
	"larder-backend/controllers"
	"larder-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupSettingsRoutes настраивает маршруты для настроек гильдии
func SetupSettingsRoutes(app *fiber.App, settingsController *controllers.SettingsController) {
	// Группа маршрутов для настроек
	settings := app.Group("/api/settings", utils.AuthMiddleware)

	// GET /api/settings - текущие настройки гильдии
	settings.Get("/", settingsController.GetSettings)

	// PUT /api/settings/season - сменить сезон
	settings.Put("/season", settingsController.SetSeason)

	// PUT /api/settings/seasonal-spoilage - переключить сезонную порчу
	settings.Put("/seasonal-spoilage", settingsController.SetSeasonalSpoilage)

	// PUT /api/settings/auto-drying - переключить автосушку
	settings.Put("/auto-drying", settingsController.SetAutoDrying)
}

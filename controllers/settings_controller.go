package controllers

import (
	"strings"

	"larder-backend/models"
	"larder-backend/services"
	"larder-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SettingsController контроллер настроек гильдии
type SettingsController struct {
	settings *services.SettingsService
	hub      *services.Hub
}

// NewSettingsController создает новый экземпляр SettingsController
func NewSettingsController(db *gorm.DB, hub *services.Hub) *SettingsController {
	return &SettingsController{
		settings: services.NewSettingsService(db),
		hub:      hub,
	}
}

// SeasonRequest структура запроса смены сезона
type SeasonRequest struct {
	Season string `json:"season" validate:"required"`
}

// ToggleRequest структура запроса переключения режима
type ToggleRequest struct {
	Active bool `json:"active"`
}

// SettingsResponse структура ответа с настройками гильдии
type SettingsResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    *models.Settings `json:"data,omitempty"`
}

// GetSettings возвращает настройки гильдии, создавая их при первом обращении
func (sc *SettingsController) GetSettings(c *fiber.Ctx) error {
	claims, err := sc.getClaimsFromToken(c)
	if err != nil {
		return c.Status(401).JSON(SettingsResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	settings, err := sc.settings.GetOrCreate(claims.GuildID)
	if err != nil {
		return c.Status(500).JSON(SettingsResponse{
			Success: false,
			Message: "Ошибка при получении настроек",
		})
	}

	return c.JSON(SettingsResponse{
		Success: true,
		Message: "Настройки получены",
		Data:    settings,
	})
}

// SetSeason меняет текущий сезон гильдии
func (sc *SettingsController) SetSeason(c *fiber.Ctx) error {
	claims, err := sc.getClaimsFromToken(c)
	if err != nil {
		return c.Status(401).JSON(SettingsResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	if !utils.IsModOrAdmin(claims) && !claims.ManageGuild {
		return c.Status(403).JSON(SettingsResponse{
			Success: false,
			Message: "Недостаточно прав для изменения настроек",
		})
	}

	var req SeasonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(SettingsResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	if strings.TrimSpace(req.Season) == "" {
		return c.Status(400).JSON(SettingsResponse{
			Success: false,
			Message: "Укажите сезон",
		})
	}

	settings, err := sc.settings.SetSeason(claims.GuildID, strings.TrimSpace(req.Season))
	if err == services.ErrInvalidSeason {
		return c.Status(400).JSON(SettingsResponse{
			Success: false,
			Message: "Недопустимый сезон",
		})
	}
	if err != nil {
		return c.Status(500).JSON(SettingsResponse{
			Success: false,
			Message: "Ошибка при обновлении настроек",
		})
	}

	sc.hub.PublishToGuild(claims.GuildID, services.Event{
		Type: "settings.updated",
		Payload: map[string]interface{}{
			"season": settings.Season,
			"actor":  claims.UserID,
		},
	})

	return c.JSON(SettingsResponse{
		Success: true,
		Message: "Сезон обновлен",
		Data:    settings,
	})
}

// SetSeasonalSpoilage включает или отключает сезонные сроки порчи добычи
func (sc *SettingsController) SetSeasonalSpoilage(c *fiber.Ctx) error {
	claims, err := sc.getClaimsFromToken(c)
	if err != nil {
		return c.Status(401).JSON(SettingsResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	if !utils.IsModOrAdmin(claims) && !claims.ManageGuild {
		return c.Status(403).JSON(SettingsResponse{
			Success: false,
			Message: "Недостаточно прав для изменения настроек",
		})
	}

	var req ToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(SettingsResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	settings, err := sc.settings.SetSeasonalSpoilage(claims.GuildID, req.Active)
	if err != nil {
		return c.Status(500).JSON(SettingsResponse{
			Success: false,
			Message: "Ошибка при обновлении настроек",
		})
	}

	sc.hub.PublishToGuild(claims.GuildID, services.Event{
		Type: "settings.updated",
		Payload: map[string]interface{}{
			"seasonal_spoilage": settings.SeasonalSpoilage,
			"actor":             claims.UserID,
		},
	})

	message := "Сезонная порча отключена"
	if settings.SeasonalSpoilage {
		message = "Сезонная порча включена"
	}

	return c.JSON(SettingsResponse{
		Success: true,
		Message: message,
		Data:    settings,
	})
}

// SetAutoDrying включает или отключает автоматическую сушку материалов
func (sc *SettingsController) SetAutoDrying(c *fiber.Ctx) error {
	claims, err := sc.getClaimsFromToken(c)
	if err != nil {
		return c.Status(401).JSON(SettingsResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	if !utils.IsModOrAdmin(claims) && !claims.ManageGuild {
		return c.Status(403).JSON(SettingsResponse{
			Success: false,
			Message: "Недостаточно прав для изменения настроек",
		})
	}

	var req ToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(SettingsResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	settings, err := sc.settings.SetAutoDrying(claims.GuildID, req.Active)
	if err != nil {
		return c.Status(500).JSON(SettingsResponse{
			Success: false,
			Message: "Ошибка при обновлении настроек",
		})
	}

	sc.hub.PublishToGuild(claims.GuildID, services.Event{
		Type: "settings.updated",
		Payload: map[string]interface{}{
			"auto_drying": settings.AutoDrying,
			"actor":       claims.UserID,
		},
	})

	message := "Автосушка отключена"
	if settings.AutoDrying {
		message = "Автосушка включена"
	}

	return c.JSON(SettingsResponse{
		Success: true,
		Message: message,
		Data:    settings,
	})
}

// getClaimsFromToken извлекает данные вызывающего из JWT токена
func (sc *SettingsController) getClaimsFromToken(c *fiber.Ctx) (*utils.Claims, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, fiber.NewError(401, "Отсутствует токен авторизации")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, fiber.NewError(401, "Неверный формат токена")
	}

	claims, err := utils.ValidateJWT(tokenString)
	if err != nil {
		return nil, fiber.NewError(401, "Недействительный токен")
	}

	return claims, nil
}

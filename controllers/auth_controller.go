package controllers

import (
	"os"

	"larder-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthController контроллер обмена секрета шлюза на JWT токен
type AuthController struct{}

// NewAuthController создает новый экземпляр AuthController
func NewAuthController() *AuthController {
	return &AuthController{}
}

// TokenRequest структура запроса выдачи токена. Шлюз чат-платформы
// выступает доверенным источником личности и ролей вызывающего:
// сервис принимает их как есть после проверки общего секрета.
type TokenRequest struct {
	GuildID       int64   `json:"guild_id" validate:"required"`
	UserID        int64   `json:"user_id" validate:"required"`
	RoleIDs       []int64 `json:"role_ids"`
	Moderator     bool    `json:"moderator"`
	Admin         bool    `json:"admin"`
	ManageGuild   bool    `json:"manage_guild"`
	ServiceSecret string  `json:"service_secret" validate:"required"`
}

// TokenResponse структура ответа с выданным токеном
type TokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// IssueToken обменивает секрет сервиса на JWT токен вызывающего
func (ac *AuthController) IssueToken(c *fiber.Ctx) error {
	var req TokenRequest

	// Парсим JSON
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(TokenResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	// Валидация
	if err := ac.validateTokenRequest(&req); err != nil {
		return c.Status(400).JSON(TokenResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	// Сверяем секрет сервиса с хэшем из окружения
	secretHash := os.Getenv("SERVICE_SECRET_HASH")
	if secretHash == "" {
		return c.Status(500).JSON(TokenResponse{
			Success: false,
			Message: "Сервис не настроен: отсутствует SERVICE_SECRET_HASH",
		})
	}

	if !utils.CheckPasswordHash(req.ServiceSecret, secretHash) {
		return c.Status(401).JSON(TokenResponse{
			Success: false,
			Message: "Неверный секрет сервиса",
		})
	}

	// Генерируем JWT токен
	token, err := utils.GenerateJWT(req.UserID, req.GuildID, req.RoleIDs,
		req.Moderator, req.Admin, req.ManageGuild)
	if err != nil {
		return c.Status(500).JSON(TokenResponse{
			Success: false,
			Message: "Ошибка при создании токена",
		})
	}

	return c.JSON(TokenResponse{
		Success: true,
		Message: "Токен успешно выдан",
		Token:   token,
	})
}

// validateTokenRequest проверяет параметры запроса токена
func (ac *AuthController) validateTokenRequest(req *TokenRequest) error {
	if req.GuildID == 0 {
		return fiber.NewError(400, "Идентификатор гильдии обязателен")
	}
	if req.UserID == 0 {
		return fiber.NewError(400, "Идентификатор пользователя обязателен")
	}
	if req.ServiceSecret == "" {
		return fiber.NewError(400, "Секрет сервиса обязателен")
	}
	return nil
}

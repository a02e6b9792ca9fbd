package controllers

import (
	"fmt"
	"strings"

	"larder-backend/config"
	"larder-backend/models"
	"larder-backend/services"
	"larder-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PerishableController контроллер операций со складами добычи
type PerishableController struct {
	registry *services.RegistryService
	batches  *services.BatchService
	cfg      *config.Config
	hub      *services.Hub
}

// NewPerishableController создает новый экземпляр PerishableController
func NewPerishableController(db *gorm.DB, cfg *config.Config, hub *services.Hub) *PerishableController {
	return &PerishableController{
		registry: services.NewRegistryService(db),
		batches:  services.NewBatchService(db),
		cfg:      cfg,
		hub:      hub,
	}
}

// PerishableRequest структура запроса добавления или списания добычи
type PerishableRequest struct {
	Item string `json:"item" validate:"required"`
	Qty  int    `json:"qty" validate:"required,gt=0"`
}

// PerishableResult итог операции с добычей
type PerishableResult struct {
	Storage   string `json:"storage"`
	Item      string `json:"item"`
	Requested int    `json:"requested"`
	Amount    int    `json:"amount"`
}

// PerishableResponse структура ответа операций с добычей
type PerishableResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    *PerishableResult `json:"data,omitempty"`
}

// AddPerishable добавляет партию добычи на склад. Название проходит через
// таблицу синонимов и проверку списка разрешенной добычи.
func (pc *PerishableController) AddPerishable(c *fiber.Ctx) error {
	claims, err := pc.getClaimsFromToken(c)
	if err != nil {
		return c.Status(401).JSON(PerishableResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	var req PerishableRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(PerishableResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	if err := pc.validatePerishableRequest(&req); err != nil {
		return c.Status(400).JSON(PerishableResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	storage, err := pc.registry.ResolveStorage(claims.GuildID,
		models.StorageTypePerishable, c.Params("name"))
	if err == services.ErrStorageNotFound {
		return c.Status(404).JSON(PerishableResponse{
			Success: false,
			Message: "Склад не найден",
		})
	}
	if err != nil {
		return c.Status(500).JSON(PerishableResponse{
			Success: false,
			Message: "Ошибка при поиске склада",
		})
	}

	if !utils.CanAccessStorage(claims, storage.OwnerRoleID) {
		return c.Status(403).JSON(PerishableResponse{
			Success: false,
			Message: "Недостаточно прав для доступа к складу",
		})
	}

	// Применяем синонимы и сверяем со списком разрешенной добычи
	display, ok := pc.cfg.CanonicalPerishable(pc.cfg.ApplyPerishableAlias(req.Item))
	if !ok {
		return c.Status(400).JSON(PerishableResponse{
			Success: false,
			Message: fmt.Sprintf("Предмет '%s' не входит в список разрешенной добычи",
				strings.TrimSpace(req.Item)),
		})
	}

	if _, err := pc.batches.Add(storage.ID, display, req.Qty, claims.UserID); err != nil {
		return c.Status(500).JSON(PerishableResponse{
			Success: false,
			Message: "Ошибка при добавлении добычи",
		})
	}

	pc.hub.PublishToGuild(claims.GuildID, services.Event{
		Type: "perishable.added",
		Payload: map[string]interface{}{
			"storage": storage.Name,
			"item":    display,
			"qty":     req.Qty,
			"actor":   claims.UserID,
		},
	})

	return c.Status(201).JSON(PerishableResponse{
		Success: true,
		Message: "Добыча добавлена",
		Data: &PerishableResult{
			Storage:   storage.Name,
			Item:      display,
			Requested: req.Qty,
			Amount:    req.Qty,
		},
	})
}

// TakePerishable списывает добычу со склада по FIFO. Списанное количество
// может быть меньше запрошенного, это не ошибка.
func (pc *PerishableController) TakePerishable(c *fiber.Ctx) error {
	claims, err := pc.getClaimsFromToken(c)
	if err != nil {
		return c.Status(401).JSON(PerishableResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	var req PerishableRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(PerishableResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	if err := pc.validatePerishableRequest(&req); err != nil {
		return c.Status(400).JSON(PerishableResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	storage, err := pc.registry.ResolveStorage(claims.GuildID,
		models.StorageTypePerishable, c.Params("name"))
	if err == services.ErrStorageNotFound {
		return c.Status(404).JSON(PerishableResponse{
			Success: false,
			Message: "Склад не найден",
		})
	}
	if err != nil {
		return c.Status(500).JSON(PerishableResponse{
			Success: false,
			Message: "Ошибка при поиске склада",
		})
	}

	if !utils.CanAccessStorage(claims, storage.OwnerRoleID) {
		return c.Status(403).JSON(PerishableResponse{
			Success: false,
			Message: "Недостаточно прав для доступа к складу",
		})
	}

	display, ok := pc.cfg.CanonicalPerishable(pc.cfg.ApplyPerishableAlias(req.Item))
	if !ok {
		return c.Status(400).JSON(PerishableResponse{
			Success: false,
			Message: fmt.Sprintf("Предмет '%s' не входит в список разрешенной добычи",
				strings.TrimSpace(req.Item)),
		})
	}

	taken, err := pc.batches.Take(storage.ID, display, req.Qty)
	if err != nil {
		return c.Status(500).JSON(PerishableResponse{
			Success: false,
			Message: "Ошибка при списании добычи",
		})
	}

	pc.hub.PublishToGuild(claims.GuildID, services.Event{
		Type: "perishable.taken",
		Payload: map[string]interface{}{
			"storage":   storage.Name,
			"item":      display,
			"requested": req.Qty,
			"amount":    taken,
			"actor":     claims.UserID,
		},
	})

	message := "Добыча списана"
	if taken < req.Qty {
		message = fmt.Sprintf("Списано %d из %d", taken, req.Qty)
	}

	return c.JSON(PerishableResponse{
		Success: true,
		Message: message,
		Data: &PerishableResult{
			Storage:   storage.Name,
			Item:      display,
			Requested: req.Qty,
			Amount:    taken,
		},
	})
}

// GetCatalog подбирает разрешенные наименования добычи для автодополнения
func (pc *PerishableController) GetCatalog(c *fiber.Ctx) error {
	if _, err := pc.getClaimsFromToken(c); err != nil {
		return c.Status(401).JSON(SuggestResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	return c.JSON(SuggestResponse{
		Success: true,
		Message: "Подсказки получены",
		Data:    pc.cfg.SuggestPerishables(c.Query("q"), suggestLimit),
	})
}

// validatePerishableRequest проверяет параметры операции с добычей
func (pc *PerishableController) validatePerishableRequest(req *PerishableRequest) error {
	if strings.TrimSpace(req.Item) == "" {
		return fiber.NewError(400, "Укажите предмет")
	}
	if req.Qty <= 0 {
		return fiber.NewError(400, "Количество должно быть положительным")
	}
	return nil
}

// getClaimsFromToken извлекает данные вызывающего из JWT токена
func (pc *PerishableController) getClaimsFromToken(c *fiber.Ctx) (*utils.Claims, error) {
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

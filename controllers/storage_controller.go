package controllers

import (
	"strings"
	"time"

	"larder-backend/models"
	"larder-backend/services"
	"larder-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Максимум подсказок автодополнения в одном ответе
const suggestLimit = 25

// StorageController контроллер для работы с реестром складов
type StorageController struct {
	registry *services.RegistryService
	batches  *services.BatchService
	lots     *services.LotService
	pantry   *services.PantryService
	settings *services.SettingsService
	hub      *services.Hub
}

// NewStorageController создает новый экземпляр StorageController
func NewStorageController(db *gorm.DB, hub *services.Hub) *StorageController {
	return &StorageController{
		registry: services.NewRegistryService(db),
		batches:  services.NewBatchService(db),
		lots:     services.NewLotService(db),
		pantry:   services.NewPantryService(db),
		settings: services.NewSettingsService(db),
		hub:      hub,
	}
}

// CreateStorageRequest структура запроса создания склада
type CreateStorageRequest struct {
	Type        string `json:"type" validate:"required,oneof=perishable material"`
	Name        string `json:"name" validate:"required,min=1,max=100"`
	OwnerRoleID int64  `json:"owner_role_id" validate:"required"`
}

// StorageResponse структура ответа со складом
type StorageResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    *models.Storage `json:"data,omitempty"`
}

// StoragesResponse структура ответа со списком складов
type StoragesResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    []models.Storage `json:"data,omitempty"`
}

// SuggestResponse структура ответа автодополнения
type SuggestResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    []string `json:"data"`
}

// InventoryView представление инвентаря склада. Для склада добычи
// заполняются items и статус кучи, для склада материалов разделы
// fresh/dried/pantry.
type InventoryView struct {
	Storage     string               `json:"storage"`
	Type        string               `json:"type"`
	Season      string               `json:"season"`
	Status      string               `json:"status,omitempty"`
	StatusLabel string               `json:"status_label,omitempty"`
	Items       []services.ItemTotal `json:"items,omitempty"`
	Fresh       []services.ItemTotal `json:"fresh,omitempty"`
	Dried       []services.ItemTotal `json:"dried,omitempty"`
	Pantry      []models.PantryEntry `json:"pantry,omitempty"`
}

// InventoryResponse структура ответа с инвентарем склада
type InventoryResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    *InventoryView `json:"data,omitempty"`
}

// CreateStorage создает новый склад гильдии. Доступно модераторам,
// администраторам и обладателям права управления гильдией.
func (sc *StorageController) CreateStorage(c *fiber.Ctx) error {
	// Получаем вызывающего из JWT токена
	claims, err := sc.getClaimsFromToken(c)
	if err != nil {
		return c.Status(401).JSON(StorageResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	if !utils.IsModOrAdmin(claims) && !claims.ManageGuild {
		return c.Status(403).JSON(StorageResponse{
			Success: false,
			Message: "Недостаточно прав для создания склада",
		})
	}

	var req CreateStorageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(StorageResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	// Валидация
	if err := sc.validateCreateStorageRequest(&req); err != nil {
		return c.Status(400).JSON(StorageResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	storage, err := sc.registry.CreateStorage(claims.GuildID, req.Type,
		strings.TrimSpace(req.Name), req.OwnerRoleID)
	if err == services.ErrStorageExists {
		return c.Status(409).JSON(StorageResponse{
			Success: false,
			Message: "Склад с таким типом и именем уже существует",
		})
	}
	if err != nil {
		return c.Status(500).JSON(StorageResponse{
			Success: false,
			Message: "Ошибка при создании склада",
		})
	}

	sc.hub.PublishToGuild(claims.GuildID, services.Event{
		Type: "storage.created",
		Payload: map[string]interface{}{
			"storage":       storage.Name,
			"type":          storage.Type,
			"owner_role_id": storage.OwnerRoleID,
			"actor":         claims.UserID,
		},
	})

	return c.Status(201).JSON(StorageResponse{
		Success: true,
		Message: "Склад успешно создан",
		Data:    storage,
	})
}

// GetStorages возвращает все склады гильдии
func (sc *StorageController) GetStorages(c *fiber.Ctx) error {
	claims, err := sc.getClaimsFromToken(c)
	if err != nil {
		return c.Status(401).JSON(StoragesResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	storages, err := sc.registry.ListStorages(claims.GuildID)
	if err != nil {
		return c.Status(500).JSON(StoragesResponse{
			Success: false,
			Message: "Ошибка при получении списка складов",
		})
	}

	return c.JSON(StoragesResponse{
		Success: true,
		Message: "Список складов получен",
		Data:    storages,
	})
}

// SuggestStorages подбирает имена складов по подстроке для автодополнения
func (sc *StorageController) SuggestStorages(c *fiber.Ctx) error {
	claims, err := sc.getClaimsFromToken(c)
	if err != nil {
		return c.Status(401).JSON(SuggestResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	storageType := c.Query("type")
	if !models.IsValidStorageType(storageType) {
		return c.Status(400).JSON(SuggestResponse{
			Success: false,
			Message: "Неверный тип склада",
		})
	}

	names, err := sc.registry.SuggestStorages(claims.GuildID, storageType,
		c.Query("q"), suggestLimit)
	if err != nil {
		return c.Status(500).JSON(SuggestResponse{
			Success: false,
			Message: "Ошибка при поиске складов",
		})
	}

	return c.JSON(SuggestResponse{
		Success: true,
		Message: "Подсказки получены",
		Data:    names,
	})
}

// GetInventory возвращает инвентарь склада. Для склада добычи это итоги
// по предметам и статус кучи по худшей партии, для склада материалов
// разделы свежего и сушеного плюс кладовая.
func (sc *StorageController) GetInventory(c *fiber.Ctx) error {
	claims, err := sc.getClaimsFromToken(c)
	if err != nil {
		return c.Status(401).JSON(InventoryResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	storageType := c.Params("type")
	if !models.IsValidStorageType(storageType) {
		return c.Status(400).JSON(InventoryResponse{
			Success: false,
			Message: "Неверный тип склада",
		})
	}

	storage, err := sc.registry.ResolveStorage(claims.GuildID, storageType, c.Params("name"))
	if err == services.ErrStorageNotFound {
		return c.Status(404).JSON(InventoryResponse{
			Success: false,
			Message: "Склад не найден",
		})
	}
	if err != nil {
		return c.Status(500).JSON(InventoryResponse{
			Success: false,
			Message: "Ошибка при поиске склада",
		})
	}

	if !utils.CanAccessStorage(claims, storage.OwnerRoleID) {
		return c.Status(403).JSON(InventoryResponse{
			Success: false,
			Message: "Недостаточно прав для доступа к складу",
		})
	}

	settings, err := sc.settings.GetOrCreate(claims.GuildID)
	if err != nil {
		return c.Status(500).JSON(InventoryResponse{
			Success: false,
			Message: "Ошибка при получении настроек",
		})
	}

	view := InventoryView{
		Storage: storage.Name,
		Type:    storage.Type,
		Season:  settings.Season,
	}

	switch storage.Type {
	case models.StorageTypePerishable:
		totals, err := sc.batches.Totals(storage.ID)
		if err != nil {
			return c.Status(500).JSON(InventoryResponse{
				Success: false,
				Message: "Ошибка при получении инвентаря",
			})
		}
		view.Items = totals

		// Статус считается по каждой живой партии и сворачивается
		// в худший по куче
		snapshot, err := sc.batches.Snapshot(storage.ID)
		if err != nil {
			return c.Status(500).JSON(InventoryResponse{
				Success: false,
				Message: "Ошибка при получении инвентаря",
			})
		}
		if len(snapshot) > 0 {
			status := services.PileStatus(snapshot, time.Now(),
				settings.Season, settings.SeasonalSpoilage)
			view.Status = status
			view.StatusLabel = spoilLabel(status)
		}

	case models.StorageTypeMaterial:
		// Перед чтением переводим отлежавшиеся лоты в сушеные
		if err := sc.lots.ApplyAging(claims.GuildID, storage.ID); err != nil {
			return c.Status(500).JSON(InventoryResponse{
				Success: false,
				Message: "Ошибка при обновлении состояний",
			})
		}

		fresh, dried, err := sc.lots.TotalsByState(storage.ID)
		if err != nil {
			return c.Status(500).JSON(InventoryResponse{
				Success: false,
				Message: "Ошибка при получении инвентаря",
			})
		}
		view.Fresh = fresh
		view.Dried = dried

		entries, err := sc.pantry.List(storage.ID)
		if err != nil {
			return c.Status(500).JSON(InventoryResponse{
				Success: false,
				Message: "Ошибка при получении кладовой",
			})
		}
		view.Pantry = entries
	}

	return c.JSON(InventoryResponse{
		Success: true,
		Message: "Инвентарь получен",
		Data:    &view,
	})
}

// validateCreateStorageRequest проверяет параметры создания склада
func (sc *StorageController) validateCreateStorageRequest(req *CreateStorageRequest) error {
	if !models.IsValidStorageType(req.Type) {
		return fiber.NewError(400, "Неверный тип склада")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fiber.NewError(400, "Имя склада обязательно")
	}
	if len(name) > 100 {
		return fiber.NewError(400, "Имя склада должно быть не длиннее 100 символов")
	}
	if req.OwnerRoleID == 0 {
		return fiber.NewError(400, "Роль-владелец склада обязательна")
	}
	return nil
}

// spoilLabel переводит статус порчи в человекочитаемую подпись
func spoilLabel(status string) string {
	switch status {
	case services.SpoilSmelly:
		return "с душком"
	case services.SpoilRuined:
		return "испорчено"
	default:
		return "свежее"
	}
}

// getClaimsFromToken извлекает данные вызывающего из JWT токена
func (sc *StorageController) getClaimsFromToken(c *fiber.Ctx) (*utils.Claims, error) {
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

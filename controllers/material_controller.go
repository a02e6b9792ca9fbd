package controllers

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"larder-backend/config"
	"larder-backend/models"
	"larder-backend/services"
	"larder-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// MaterialController контроллер операций со складами материалов:
// лоты, кладовая и изготовление по рецептам
type MaterialController struct {
	registry *services.RegistryService
	lots     *services.LotService
	pantry   *services.PantryService
	recipes  *services.RecipeService
	cfg      *config.Config
	hub      *services.Hub
}

// NewMaterialController создает новый экземпляр MaterialController
func NewMaterialController(db *gorm.DB, cfg *config.Config, hub *services.Hub) *MaterialController {
	return &MaterialController{
		registry: services.NewRegistryService(db),
		lots:     services.NewLotService(db),
		pantry:   services.NewPantryService(db),
		recipes:  services.NewRecipeService(db, cfg),
		cfg:      cfg,
		hub:      hub,
	}
}

// MaterialRequest структура запроса добавления или списания материала
type MaterialRequest struct {
	Material string `json:"material" validate:"required"`
	Qty      int    `json:"qty" validate:"required,gt=0"`
}

// MaterialResult итог операции с материалом
type MaterialResult struct {
	Storage   string `json:"storage"`
	Material  string `json:"material"`
	Requested int    `json:"requested"`
	Amount    int    `json:"amount"`
}

// MaterialResponse структура ответа операций с материалами
type MaterialResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    *MaterialResult `json:"data,omitempty"`
}

// PantryListResponse структура ответа со списком кладовой
type PantryListResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Data    []models.PantryEntry `json:"data,omitempty"`
}

// PantryTakeRequest структура запроса списания из кладовой
type PantryTakeRequest struct {
	Item string `json:"item" validate:"required"`
	Qty  int    `json:"qty" validate:"required,gt=0"`
}

// PantryTakeResult итог списания из кладовой
type PantryTakeResult struct {
	Storage   string `json:"storage"`
	Item      string `json:"item"`
	Requested int    `json:"requested"`
	Amount    int    `json:"amount"`
}

// PantryTakeResponse структура ответа списания из кладовой
type PantryTakeResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    *PantryTakeResult `json:"data,omitempty"`
}

// CraftRequest структура запроса изготовления по рецепту
type CraftRequest struct {
	Recipe     string `json:"recipe" validate:"required"`
	Multiplier int    `json:"multiplier" validate:"required,gt=0"`
}

// CraftResult итог успешного изготовления
type CraftResult struct {
	Storage    string `json:"storage"`
	Recipe     string `json:"recipe"`
	Multiplier int    `json:"multiplier"`
}

// CraftProblems постатейный разбор невыполнимого рецепта
type CraftProblems struct {
	Disallowed []string             `json:"disallowed,omitempty"`
	Shortfalls []services.Shortfall `json:"shortfalls,omitempty"`
}

// CraftResponse структура ответа изготовления
type CraftResponse struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Data     *CraftResult   `json:"data,omitempty"`
	Problems *CraftProblems `json:"problems,omitempty"`
}

// IngredientView одна строка состава рецепта
type IngredientView struct {
	Material string `json:"material"`
	Qty      int    `json:"qty"`
}

// RecipeView рецепт с составом на одну единицу
type RecipeView struct {
	Name        string           `json:"name"`
	Ingredients []IngredientView `json:"ingredients"`
}

// RecipesResponse структура ответа со списком рецептов
type RecipesResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    []RecipeView `json:"data,omitempty"`
}

// AddMaterial добавляет свежий лот материала на склад
func (mc *MaterialController) AddMaterial(c *fiber.Ctx) error {
	claims, err := mc.getClaimsFromToken(c)
	if err != nil {
		return c.Status(401).JSON(MaterialResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	var req MaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(MaterialResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	if err := mc.validateMaterialRequest(&req); err != nil {
		return c.Status(400).JSON(MaterialResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	storage, err := mc.registry.ResolveStorage(claims.GuildID,
		models.StorageTypeMaterial, c.Params("name"))
	if err == services.ErrStorageNotFound {
		return c.Status(404).JSON(MaterialResponse{
			Success: false,
			Message: "Склад не найден",
		})
	}
	if err != nil {
		return c.Status(500).JSON(MaterialResponse{
			Success: false,
			Message: "Ошибка при поиске склада",
		})
	}

	if !utils.CanAccessStorage(claims, storage.OwnerRoleID) {
		return c.Status(403).JSON(MaterialResponse{
			Success: false,
			Message: "Недостаточно прав для доступа к складу",
		})
	}

	display, ok := mc.cfg.CanonicalMaterial(req.Material)
	if !ok {
		return c.Status(400).JSON(MaterialResponse{
			Success: false,
			Message: fmt.Sprintf("Материал '%s' не входит в список разрешенных материалов",
				strings.TrimSpace(req.Material)),
		})
	}

	// Сначала переводим отлежавшиеся лоты, чтобы новый лот не смешался
	// с давно ожидающими сушку
	if err := mc.lots.ApplyAging(claims.GuildID, storage.ID); err != nil {
		return c.Status(500).JSON(MaterialResponse{
			Success: false,
			Message: "Ошибка при обновлении состояний",
		})
	}

	if _, err := mc.lots.Add(storage.ID, display, req.Qty, claims.UserID); err != nil {
		return c.Status(500).JSON(MaterialResponse{
			Success: false,
			Message: "Ошибка при добавлении материала",
		})
	}

	mc.hub.PublishToGuild(claims.GuildID, services.Event{
		Type: "material.added",
		Payload: map[string]interface{}{
			"storage":  storage.Name,
			"material": display,
			"qty":      req.Qty,
			"actor":    claims.UserID,
		},
	})

	return c.Status(201).JSON(MaterialResponse{
		Success: true,
		Message: "Материал добавлен",
		Data: &MaterialResult{
			Storage:   storage.Name,
			Material:  display,
			Requested: req.Qty,
			Amount:    req.Qty,
		},
	})
}

// TakeMaterial списывает материал со склада: сперва свежие лоты по FIFO,
// затем сушеные. Списанное может быть меньше запрошенного.
func (mc *MaterialController) TakeMaterial(c *fiber.Ctx) error {
	claims, err := mc.getClaimsFromToken(c)
	if err != nil {
		return c.Status(401).JSON(MaterialResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	var req MaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(MaterialResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	if err := mc.validateMaterialRequest(&req); err != nil {
		return c.Status(400).JSON(MaterialResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	storage, err := mc.registry.ResolveStorage(claims.GuildID,
		models.StorageTypeMaterial, c.Params("name"))
	if err == services.ErrStorageNotFound {
		return c.Status(404).JSON(MaterialResponse{
			Success: false,
			Message: "Склад не найден",
		})
	}
	if err != nil {
		return c.Status(500).JSON(MaterialResponse{
			Success: false,
			Message: "Ошибка при поиске склада",
		})
	}

	if !utils.CanAccessStorage(claims, storage.OwnerRoleID) {
		return c.Status(403).JSON(MaterialResponse{
			Success: false,
			Message: "Недостаточно прав для доступа к складу",
		})
	}

	display, ok := mc.cfg.CanonicalMaterial(req.Material)
	if !ok {
		return c.Status(400).JSON(MaterialResponse{
			Success: false,
			Message: fmt.Sprintf("Материал '%s' не входит в список разрешенных материалов",
				strings.TrimSpace(req.Material)),
		})
	}

	if err := mc.lots.ApplyAging(claims.GuildID, storage.ID); err != nil {
		return c.Status(500).JSON(MaterialResponse{
			Success: false,
			Message: "Ошибка при обновлении состояний",
		})
	}

	taken, err := mc.lots.Take(storage.ID, display, req.Qty)
	if err != nil {
		return c.Status(500).JSON(MaterialResponse{
			Success: false,
			Message: "Ошибка при списании материала",
		})
	}

	mc.hub.PublishToGuild(claims.GuildID, services.Event{
		Type: "material.taken",
		Payload: map[string]interface{}{
			"storage":   storage.Name,
			"material":  display,
			"requested": req.Qty,
			"amount":    taken,
			"actor":     claims.UserID,
		},
	})

	message := "Материал списан"
	if taken < req.Qty {
		message = fmt.Sprintf("Списано %d из %d", taken, req.Qty)
	}

	return c.JSON(MaterialResponse{
		Success: true,
		Message: message,
		Data: &MaterialResult{
			Storage:   storage.Name,
			Material:  display,
			Requested: req.Qty,
			Amount:    taken,
		},
	})
}

// GetPantry возвращает содержимое кладовой склада материалов
func (mc *MaterialController) GetPantry(c *fiber.Ctx) error {
	claims, err := mc.getClaimsFromToken(c)
	if err != nil {
		return c.Status(401).JSON(PantryListResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	storage, err := mc.registry.ResolveStorage(claims.GuildID,
		models.StorageTypeMaterial, c.Params("name"))
	if err == services.ErrStorageNotFound {
		return c.Status(404).JSON(PantryListResponse{
			Success: false,
			Message: "Склад не найден",
		})
	}
	if err != nil {
		return c.Status(500).JSON(PantryListResponse{
			Success: false,
			Message: "Ошибка при поиске склада",
		})
	}

	if !utils.CanAccessStorage(claims, storage.OwnerRoleID) {
		return c.Status(403).JSON(PantryListResponse{
			Success: false,
			Message: "Недостаточно прав для доступа к складу",
		})
	}

	entries, err := mc.pantry.List(storage.ID)
	if err != nil {
		return c.Status(500).JSON(PantryListResponse{
			Success: false,
			Message: "Ошибка при получении кладовой",
		})
	}

	return c.JSON(PantryListResponse{
		Success: true,
		Message: "Кладовая получена",
		Data:    entries,
	})
}

// TakePantryItem списывает готовый продукт из кладовой, не больше
// доступного остатка
func (mc *MaterialController) TakePantryItem(c *fiber.Ctx) error {
	claims, err := mc.getClaimsFromToken(c)
	if err != nil {
		return c.Status(401).JSON(PantryTakeResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	var req PantryTakeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(PantryTakeResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	if strings.TrimSpace(req.Item) == "" {
		return c.Status(400).JSON(PantryTakeResponse{
			Success: false,
			Message: "Укажите продукт",
		})
	}
	if req.Qty <= 0 {
		return c.Status(400).JSON(PantryTakeResponse{
			Success: false,
			Message: "Количество должно быть положительным",
		})
	}

	storage, err := mc.registry.ResolveStorage(claims.GuildID,
		models.StorageTypeMaterial, c.Params("name"))
	if err == services.ErrStorageNotFound {
		return c.Status(404).JSON(PantryTakeResponse{
			Success: false,
			Message: "Склад не найден",
		})
	}
	if err != nil {
		return c.Status(500).JSON(PantryTakeResponse{
			Success: false,
			Message: "Ошибка при поиске склада",
		})
	}

	if !utils.CanAccessStorage(claims, storage.OwnerRoleID) {
		return c.Status(403).JSON(PantryTakeResponse{
			Success: false,
			Message: "Недостаточно прав для доступа к складу",
		})
	}

	taken, err := mc.pantry.Consume(storage.ID, req.Item, req.Qty)
	if err != nil {
		return c.Status(500).JSON(PantryTakeResponse{
			Success: false,
			Message: "Ошибка при списании из кладовой",
		})
	}

	mc.hub.PublishToGuild(claims.GuildID, services.Event{
		Type: "pantry.consumed",
		Payload: map[string]interface{}{
			"storage":   storage.Name,
			"item":      strings.TrimSpace(req.Item),
			"requested": req.Qty,
			"amount":    taken,
			"actor":     claims.UserID,
		},
	})

	message := "Продукт списан"
	if taken < req.Qty {
		message = fmt.Sprintf("Списано %d из %d", taken, req.Qty)
	}

	return c.JSON(PantryTakeResponse{
		Success: true,
		Message: message,
		Data: &PantryTakeResult{
			Storage:   storage.Name,
			Item:      strings.TrimSpace(req.Item),
			Requested: req.Qty,
			Amount:    taken,
		},
	})
}

// Craft изготавливает продукт по рецепту: проверка выполнимости, списание
// всех ингредиентов и пополнение кладовой происходят как единое целое
func (mc *MaterialController) Craft(c *fiber.Ctx) error {
	claims, err := mc.getClaimsFromToken(c)
	if err != nil {
		return c.Status(401).JSON(CraftResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	var req CraftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(CraftResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	if strings.TrimSpace(req.Recipe) == "" {
		return c.Status(400).JSON(CraftResponse{
			Success: false,
			Message: "Укажите рецепт",
		})
	}
	if req.Multiplier <= 0 {
		return c.Status(400).JSON(CraftResponse{
			Success: false,
			Message: "Множитель должен быть положительным",
		})
	}

	storage, err := mc.registry.ResolveStorage(claims.GuildID,
		models.StorageTypeMaterial, c.Params("name"))
	if err == services.ErrStorageNotFound {
		return c.Status(404).JSON(CraftResponse{
			Success: false,
			Message: "Склад не найден",
		})
	}
	if err != nil {
		return c.Status(500).JSON(CraftResponse{
			Success: false,
			Message: "Ошибка при поиске склада",
		})
	}

	if !utils.CanAccessStorage(claims, storage.OwnerRoleID) {
		return c.Status(403).JSON(CraftResponse{
			Success: false,
			Message: "Недостаточно прав для доступа к складу",
		})
	}

	_, productName, ok := mc.cfg.Recipe(req.Recipe)
	if !ok {
		return c.Status(404).JSON(CraftResponse{
			Success: false,
			Message: "Рецепт не найден",
		})
	}

	err = mc.recipes.Craft(claims.GuildID, storage.ID, req.Recipe, req.Multiplier, claims.UserID)
	if err != nil {
		var stockErr *services.InsufficientStockError
		if errors.As(err, &stockErr) {
			return c.Status(400).JSON(CraftResponse{
				Success: false,
				Message: "Изготовление невозможно: не хватает материалов",
				Problems: &CraftProblems{
					Disallowed: stockErr.Disallowed,
					Shortfalls: stockErr.Shortfalls,
				},
			})
		}
		if err == services.ErrInventoryConsistency {
			return c.Status(500).JSON(CraftResponse{
				Success: false,
				Message: "Нарушение целостности запасов, операция отменена",
			})
		}
		return c.Status(500).JSON(CraftResponse{
			Success: false,
			Message: "Ошибка при изготовлении",
		})
	}

	mc.hub.PublishToGuild(claims.GuildID, services.Event{
		Type: "recipe.crafted",
		Payload: map[string]interface{}{
			"storage":    storage.Name,
			"recipe":     productName,
			"multiplier": req.Multiplier,
			"actor":      claims.UserID,
		},
	})
	mc.hub.PublishToGuild(claims.GuildID, services.Event{
		Type: "pantry.produced",
		Payload: map[string]interface{}{
			"storage": storage.Name,
			"item":    productName,
			"qty":     req.Multiplier,
			"actor":   claims.UserID,
		},
	})

	return c.Status(201).JSON(CraftResponse{
		Success: true,
		Message: fmt.Sprintf("Изготовлено: %s x%d", productName, req.Multiplier),
		Data: &CraftResult{
			Storage:    storage.Name,
			Recipe:     productName,
			Multiplier: req.Multiplier,
		},
	})
}

// GetRecipes возвращает таблицу рецептов из статической конфигурации
func (mc *MaterialController) GetRecipes(c *fiber.Ctx) error {
	if _, err := mc.getClaimsFromToken(c); err != nil {
		return c.Status(401).JSON(RecipesResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	views := make([]RecipeView, 0, len(mc.cfg.RecipeNames()))
	for _, name := range mc.cfg.RecipeNames() {
		recipe, _, _ := mc.cfg.Recipe(name)

		ingredients := make([]IngredientView, 0, len(recipe))
		for material, qty := range recipe {
			ingredients = append(ingredients, IngredientView{Material: material, Qty: qty})
		}
		sort.Slice(ingredients, func(i, j int) bool {
			return strings.ToLower(ingredients[i].Material) < strings.ToLower(ingredients[j].Material)
		})

		views = append(views, RecipeView{Name: name, Ingredients: ingredients})
	}

	return c.JSON(RecipesResponse{
		Success: true,
		Message: "Рецепты получены",
		Data:    views,
	})
}

// GetCatalog подбирает разрешенные наименования материалов для автодополнения
func (mc *MaterialController) GetCatalog(c *fiber.Ctx) error {
	if _, err := mc.getClaimsFromToken(c); err != nil {
		return c.Status(401).JSON(SuggestResponse{
			Success: false,
			Message: "Неавторизованный доступ",
		})
	}

	return c.JSON(SuggestResponse{
		Success: true,
		Message: "Подсказки получены",
		Data:    mc.cfg.SuggestMaterials(c.Query("q"), suggestLimit),
	})
}

// validateMaterialRequest проверяет параметры операции с материалом
func (mc *MaterialController) validateMaterialRequest(req *MaterialRequest) error {
	if strings.TrimSpace(req.Material) == "" {
		return fiber.NewError(400, "Укажите материал")
	}
	if req.Qty <= 0 {
		return fiber.NewError(400, "Количество должно быть положительным")
	}
	return nil
}

// getClaimsFromToken извлекает данные вызывающего из JWT токена
func (mc *MaterialController) getClaimsFromToken(c *fiber.Ctx) (*utils.Claims, error) {
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

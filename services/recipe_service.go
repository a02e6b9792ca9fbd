package services

import (
	"sort"
	"strings"

	"larder-backend/config"

	"gorm.io/gorm"
)

// RecipeService изготавливает продукты по рецептам из статической
// конфигурации: списывает ингредиенты из лотов и кладет результат
// в кладовую как единое целое
type RecipeService struct {
	db   *gorm.DB
	cfg  *config.Config
	lots *LotService
}

// NewRecipeService создает новый движок рецептов
func NewRecipeService(db *gorm.DB, cfg *config.Config) *RecipeService {
	return &RecipeService{db: db, cfg: cfg, lots: NewLotService(db)}
}

// Craft изготавливает продукт по рецепту. Протокол: полная проверка
// выполнимости до единой мутации, затем списание всех ингредиентов и
// производство внутри одной транзакции. Если хотя бы один ингредиент
// недопустим или его не хватает, возвращается InsufficientStockError
// с полным списком проблем и запасы не меняются. Недобор при списании
// после успешной проверки означает гонку с параллельным списанием:
// транзакция откатывается и наружу уходит ErrInventoryConsistency.
func (s *RecipeService) Craft(guildID int64, storageID uint, recipeName string, multiplier int, actor int64) error {
	recipe, productName, ok := s.cfg.Recipe(recipeName)
	if !ok {
		return ErrRecipeNotFound
	}

	// Сушка до проверки, чтобы проверка видела актуальные состояния лотов
	if err := s.lots.ApplyAging(guildID, storageID); err != nil {
		return err
	}

	// Детерминированный порядок обхода ингредиентов
	ingredients := make([]string, 0, len(recipe))
	for material := range recipe {
		ingredients = append(ingredients, material)
	}
	sort.Slice(ingredients, func(i, j int) bool {
		return strings.ToLower(ingredients[i]) < strings.ToLower(ingredients[j])
	})

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Пасс проверки: мутаций нет, собираем все проблемы разом
		stockErr := &InsufficientStockError{}
		for _, material := range ingredients {
			if _, allowed := s.cfg.CanonicalMaterial(material); !allowed {
				stockErr.Disallowed = append(stockErr.Disallowed, material)
				continue
			}

			required := recipe[material] * multiplier
			available, err := totalLots(tx, storageID, config.NormalizeKey(material))
			if err != nil {
				return err
			}
			if available < required {
				stockErr.Shortfalls = append(stockErr.Shortfalls, Shortfall{
					Material:  material,
					Required:  required,
					Available: available,
					Missing:   required - available,
				})
			}
		}
		if len(stockErr.Disallowed) > 0 || len(stockErr.Shortfalls) > 0 {
			return stockErr
		}

		// Пасс списания: достаточность уже подтверждена, поэтому недобор
		// здесь фатален, а откат транзакции отменяет частичное списание
		for _, material := range ingredients {
			required := recipe[material] * multiplier
			taken, err := takeLots(tx, storageID, config.NormalizeKey(material), required)
			if err != nil {
				return err
			}
			if taken != required {
				return ErrInventoryConsistency
			}
		}

		return producePantry(tx, storageID, productName, multiplier, actor)
	})
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Config статическая конфигурация склада: разрешенные наименования,
// рецепты и таблица синонимов. Загружается один раз при старте процесса
// и после этого не изменяется.
type Config struct {
	AllowedPerishables []string                  `json:"allowed_perishables"`
	AllowedMaterials   []string                  `json:"allowed_materials"`
	Recipes            map[string]map[string]int `json:"recipes"`
	PerishableAliases  map[string]string         `json:"perishable_aliases"`

	// Нормализованные словари: ключ -> каноническое отображаемое имя
	perishableSet map[string]string
	materialSet   map[string]string
	aliasSet      map[string]string
	recipeSet     map[string]string
}

// NormalizeKey приводит наименование к ключу хранения: нижний регистр,
// схлопнутые пробелы. Одна и та же нормализация используется при
// добавлении, списании и подсчете итогов.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Default возвращает встроенную конфигурацию по умолчанию
func Default() *Config {
	cfg := &Config{
		AllowedPerishables: []string{
			"Mouse (common)",
			"Bird (common)",
			"Raptor (common)",
			"Fish (common)",
			"Waterfowl (common)",
			"Goose (common)",
			"Rat (common)",
			"Rabbit (common)",
			"Hare (common)",
			"Snake (common)",
		},
		AllowedMaterials: []string{
			"Basil",
			"Thyme",
			"Sage",
			"Mint",
			"Nettle",
			"Chamomile",
			"Yarrow",
			"Comfrey",
			"Marigold",
			"Juniper",
		},
		Recipes: map[string]map[string]int{
			"Healing salve":  {"Yarrow": 2, "Comfrey": 1},
			"Travel ration":  {"Mint": 1, "Nettle": 2},
			"Wound poultice": {"Marigold": 2, "Chamomile": 1, "Thyme": 1},
			"Calming mix":    {"Chamomile": 2, "Mint": 1},
		},
		PerishableAliases: map[string]string{
			"mouse":     "Mouse (common)",
			"mice":      "Mouse (common)",
			"bird":      "Bird (common)",
			"birds":     "Bird (common)",
			"raptor":    "Raptor (common)",
			"hawk":      "Raptor (common)",
			"fish":      "Fish (common)",
			"waterfowl": "Waterfowl (common)",
			"goose":     "Goose (common)",
			"geese":     "Goose (common)",
			"rat":       "Rat (common)",
			"rats":      "Rat (common)",
			"rabbit":    "Rabbit (common)",
			"rabbits":   "Rabbit (common)",
			"hare":      "Hare (common)",
			"hares":     "Hare (common)",
			"snake":     "Snake (common)",
			"snakes":    "Snake (common)",
		},
	}
	cfg.buildIndexes()
	return cfg
}

// Load загружает конфигурацию из JSON файла. Если файл отсутствует,
// возвращается встроенная конфигурация по умолчанию.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("не удалось прочитать конфигурацию %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("не удалось разобрать конфигурацию %s: %w", path, err)
	}

	cfg.buildIndexes()
	return &cfg, nil
}

// buildIndexes строит нормализованные словари для быстрых проверок
func (c *Config) buildIndexes() {
	c.perishableSet = make(map[string]string, len(c.AllowedPerishables))
	for _, name := range c.AllowedPerishables {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		c.perishableSet[NormalizeKey(name)] = name
	}

	c.materialSet = make(map[string]string, len(c.AllowedMaterials))
	for _, name := range c.AllowedMaterials {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		c.materialSet[NormalizeKey(name)] = name
	}

	c.aliasSet = make(map[string]string, len(c.PerishableAliases))
	for alias, canonical := range c.PerishableAliases {
		c.aliasSet[NormalizeKey(alias)] = canonical
	}

	c.recipeSet = make(map[string]string, len(c.Recipes))
	for name := range c.Recipes {
		c.recipeSet[NormalizeKey(name)] = name
	}
}

// ApplyPerishableAlias заменяет распространенный синоним на каноническое
// имя. Неизвестные имена возвращаются без изменений (обрезанными).
func (c *Config) ApplyPerishableAlias(name string) string {
	if canonical, ok := c.aliasSet[NormalizeKey(name)]; ok {
		return canonical
	}
	return strings.TrimSpace(name)
}

// CanonicalPerishable возвращает каноническое отображаемое имя продукта
// и признак того, что продукт входит в разрешенный список
func (c *Config) CanonicalPerishable(name string) (string, bool) {
	display, ok := c.perishableSet[NormalizeKey(name)]
	return display, ok
}

// CanonicalMaterial возвращает каноническое отображаемое имя материала
// и признак того, что материал входит в разрешенный список
func (c *Config) CanonicalMaterial(name string) (string, bool) {
	display, ok := c.materialSet[NormalizeKey(name)]
	return display, ok
}

// Recipe возвращает состав рецепта и его каноническое имя. Поиск не
// зависит от регистра и лишних пробелов во входном имени.
func (c *Config) Recipe(name string) (map[string]int, string, bool) {
	canonical, ok := c.recipeSet[NormalizeKey(name)]
	if !ok {
		return nil, "", false
	}
	return c.Recipes[canonical], canonical, true
}

// RecipeNames возвращает имена рецептов, отсортированные без учета регистра
func (c *Config) RecipeNames() []string {
	names := make([]string, 0, len(c.Recipes))
	for name := range c.Recipes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// SuggestPerishables подбирает разрешенные наименования добычи по подстроке
func (c *Config) SuggestPerishables(query string, limit int) []string {
	return suggestNames(c.AllowedPerishables, query, limit)
}

// SuggestMaterials подбирает разрешенные наименования материалов по подстроке
func (c *Config) SuggestMaterials(query string, limit int) []string {
	return suggestNames(c.AllowedMaterials, query, limit)
}

// suggestNames фильтрует список по подстроке без учета регистра,
// сохраняя порядок конфигурации
func suggestNames(names []string, query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	matches := make([]string, 0, limit)
	for _, name := range names {
		if q == "" || strings.Contains(strings.ToLower(name), q) {
			matches = append(matches, name)
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches
}

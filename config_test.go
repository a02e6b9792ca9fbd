package main

import (
	"os"
	"path/filepath"
	"testing"

	"larder-backend/config"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "mouse (common)", config.NormalizeKey("  Mouse   (Common) "))
	assert.Equal(t, "basil", config.NormalizeKey("BaSiL"))
	assert.Equal(t, "", config.NormalizeKey("   "))
}

func TestCanonicalLookups(t *testing.T) {
	cfg := config.Default()

	// Каноническое имя возвращается независимо от регистра и пробелов
	display, ok := cfg.CanonicalPerishable("  mouse   (common) ")
	assert.True(t, ok)
	assert.Equal(t, "Mouse (common)", display)

	display, ok = cfg.CanonicalMaterial("YARROW")
	assert.True(t, ok)
	assert.Equal(t, "Yarrow", display)

	_, ok = cfg.CanonicalPerishable("dragon")
	assert.False(t, ok)

	// Синонимы разворачиваются в каноническое имя
	assert.Equal(t, "Mouse (common)", cfg.ApplyPerishableAlias("mice"))
	assert.Equal(t, "Raptor (common)", cfg.ApplyPerishableAlias("Hawk"))

	// Неизвестный синоним возвращается как есть
	assert.Equal(t, "dragon", cfg.ApplyPerishableAlias("dragon"))
}

func TestRecipeLookup(t *testing.T) {
	cfg := config.Default()

	recipe, name, ok := cfg.Recipe("  healing   SALVE ")
	assert.True(t, ok)
	assert.Equal(t, "Healing salve", name)
	assert.Equal(t, map[string]int{"Yarrow": 2, "Comfrey": 1}, recipe)

	_, _, ok = cfg.Recipe("unknown brew")
	assert.False(t, ok)
}

func TestSuggestNames(t *testing.T) {
	cfg := config.Default()

	// Пустой запрос возвращает все наименования в порядке конфигурации
	all := cfg.SuggestMaterials("", 25)
	assert.Len(t, all, 10)
	assert.Equal(t, "Basil", all[0])

	// Подстрока без учета регистра
	matches := cfg.SuggestPerishables("COMMON", 25)
	assert.Len(t, matches, 10)

	matches = cfg.SuggestMaterials("mi", 25)
	assert.Contains(t, matches, "Mint")

	// Лимит ограничивает выдачу
	capped := cfg.SuggestPerishables("", 3)
	assert.Len(t, capped, 3)
}

func TestConfigLoad(t *testing.T) {
	// Отсутствующий файл дает конфигурацию по умолчанию
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.NoError(t, err)
	assert.NotEmpty(t, cfg.AllowedPerishables)

	// Файл с собственным набором перекрывает значения по умолчанию
	custom := `{
		"allowed_perishables": ["Trout"],
		"allowed_materials": ["Moss"],
		"recipes": {"Bedding": {"Moss": 3}},
		"perishable_aliases": {"trout": "Trout"}
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	err = os.WriteFile(path, []byte(custom), 0644)
	assert.NoError(t, err)

	cfg, err = config.Load(path)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Trout"}, cfg.AllowedPerishables)

	recipe, name, ok := cfg.Recipe("bedding")
	assert.True(t, ok)
	assert.Equal(t, "Bedding", name)
	assert.Equal(t, map[string]int{"Moss": 3}, recipe)
}

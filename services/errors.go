package services

import (
	"errors"
	"fmt"
	"strings"
)

// Ошибки уровня сервисов. Контроллеры сопоставляют их с HTTP-кодами:
// конфликт, не найдено, некорректный ввод и так далее.
var (
	ErrStorageExists        = errors.New("storage already exists")
	ErrStorageNotFound      = errors.New("storage not found")
	ErrRecipeNotFound       = errors.New("recipe not found")
	ErrItemNotAllowed       = errors.New("item is not allowed")
	ErrMaterialNotAllowed   = errors.New("material is not allowed")
	ErrInvalidSeason        = errors.New("invalid season")
	ErrInventoryConsistency = errors.New("inventory consistency violation")
)

// Shortfall описывает нехватку одного ингредиента рецепта
type Shortfall struct {
	Material  string `json:"material"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
	Missing   int    `json:"missing"`
}

// InsufficientStockError возвращается движком рецептов, когда хотя бы один
// ингредиент недопустим или недоступен в нужном количестве. Содержит полный
// постатейный список проблем; при этой ошибке ни одна строка запасов
// не изменяется.
type InsufficientStockError struct {
	Disallowed []string
	Shortfalls []Shortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Disallowed)+len(e.Shortfalls))
	for _, m := range e.Disallowed {
		parts = append(parts, m+" not allowed")
	}
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s short by %d", s.Material, s.Missing))
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}

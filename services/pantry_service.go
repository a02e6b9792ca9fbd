package services

import (
	"larder-backend/config"
	"larder-backend/models"

	"gorm.io/gorm"
)

// PantryService предоставляет методы для работы с кладовой готовых продуктов
type PantryService struct {
	db *gorm.DB
}

// NewPantryService создает новый сервис кладовой
func NewPantryService(db *gorm.DB) *PantryService {
	return &PantryService{db: db}
}

// Produce добавляет готовый продукт в кладовую накопительным апсертом:
// существующий счетчик увеличивается, иначе создается новая строка
func (s *PantryService) Produce(storageID uint, itemDisplay string, qty int, actor int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return producePantry(tx, storageID, itemDisplay, qty, actor)
	})
}

// Consume списывает продукт из кладовой, не больше доступного количества.
// Строка с нулевым остатком удаляется целиком. Возвращает фактически
// списанное количество.
func (s *PantryService) Consume(storageID uint, itemDisplay string, qty int) (int, error) {
	key := config.NormalizeKey(itemDisplay)
	taken := 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var entry models.PantryEntry
		err := tx.Where("storage_id = ? AND product_key = ?", storageID, key).
			First(&entry).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		if entry.Qty <= qty {
			taken = entry.Qty
			return tx.Delete(&entry).Error
		}

		taken = qty
		entry.Qty -= qty
		return tx.Save(&entry).Error
	})
	if err != nil {
		return 0, err
	}

	return taken, nil
}

// List возвращает живые строки кладовой с положительным остатком,
// упорядоченные по отображаемому имени без учета регистра
func (s *PantryService) List(storageID uint) ([]models.PantryEntry, error) {
	var entries []models.PantryEntry
	err := s.db.Where("storage_id = ? AND qty > 0", storageID).
		Order("LOWER(product_display)").
		Find(&entries).Error
	return entries, err
}

// producePantry выполняет накопительный апсерт внутри открытой транзакции
func producePantry(tx *gorm.DB, storageID uint, itemDisplay string, qty int, actor int64) error {
	key := config.NormalizeKey(itemDisplay)

	var entry models.PantryEntry
	err := tx.Where("storage_id = ? AND product_key = ?", storageID, key).
		First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		entry = models.PantryEntry{
			StorageID:      storageID,
			ProductKey:     key,
			ProductDisplay: itemDisplay,
			Qty:            qty,
			UpdatedBy:      actor,
		}
		return tx.Create(&entry).Error
	}
	if err != nil {
		return err
	}

	entry.Qty += qty
	entry.UpdatedBy = actor
	return tx.Save(&entry).Error
}

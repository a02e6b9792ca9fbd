package services

import (
	"time"

	"larder-backend/config"
	"larder-backend/models"

	"gorm.io/gorm"
)

// Окно автоматической сушки: свежий лот старше этого срока считается
// отлежавшимся и при включенной автосушке переводится в сушеные
const dryingWindow = 7 * 24 * time.Hour

// LotService предоставляет методы для работы с лотами материалов
type LotService struct {
	db *gorm.DB
}

// NewLotService создает новый сервис лотов
func NewLotService(db *gorm.DB) *LotService {
	return &LotService{db: db}
}

// Add добавляет новый лот материала. Лот всегда создается свежим
// и никогда не сливается с существующими.
func (s *LotService) Add(storageID uint, materialDisplay string, qty int, actor int64) (*models.Lot, error) {
	lot := models.Lot{
		StorageID:       storageID,
		MaterialKey:     config.NormalizeKey(materialDisplay),
		MaterialDisplay: materialDisplay,
		Qty:             qty,
		State:           models.LotStateFresh,
		AddedBy:         actor,
	}

	if err := s.db.Create(&lot).Error; err != nil {
		return nil, err
	}

	return &lot, nil
}

// ApplyAging переводит отлежавшиеся свежие лоты склада в сушеные на месте:
// количество и время поступления не меняются. При выключенной автосушке
// ничего не делает. Вызывается перед любым чтением или списанием, которое
// должно видеть актуальные состояния; повторный вызов безвреден, уже
// сушеные лоты не трогаются.
func (s *LotService) ApplyAging(guildID int64, storageID uint) error {
	var settings models.Settings
	err := s.db.Where("guild_id = ?", guildID).First(&settings).Error
	if err == gorm.ErrRecordNotFound {
		// Настроек еще нет, автосушка по умолчанию выключена
		return nil
	}
	if err != nil {
		return err
	}
	if !settings.AutoDrying {
		return nil
	}

	cutoff := time.Now().Add(-dryingWindow)
	return s.db.Model(&models.Lot{}).
		Where("storage_id = ? AND state = ? AND added_at <= ?",
			storageID, models.LotStateFresh, cutoff).
		Update("state", models.LotStateDried).Error
}

// Take списывает материал по FIFO: сперва свежие лоты от старых к новым,
// затем сушеные. Возвращает фактически списанное количество, которое
// может быть меньше запрошенного.
func (s *LotService) Take(storageID uint, materialDisplay string, qty int) (int, error) {
	key := config.NormalizeKey(materialDisplay)
	taken := 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		taken, err = takeLots(tx, storageID, key, qty)
		return err
	})
	if err != nil {
		return 0, err
	}

	return taken, nil
}

// TotalsByState возвращает суммарные запасы склада раздельно по свежим
// и сушеным материалам
func (s *LotService) TotalsByState(storageID uint) ([]ItemTotal, []ItemTotal, error) {
	fresh, err := s.stateTotals(storageID, models.LotStateFresh)
	if err != nil {
		return nil, nil, err
	}
	dried, err := s.stateTotals(storageID, models.LotStateDried)
	if err != nil {
		return nil, nil, err
	}
	return fresh, dried, nil
}

// TotalAvailable возвращает суммарный запас материала по обоим состояниям.
// Используется движком рецептов для проверки выполнимости.
func (s *LotService) TotalAvailable(storageID uint, materialDisplay string) (int, error) {
	return totalLots(s.db, storageID, config.NormalizeKey(materialDisplay))
}

func (s *LotService) stateTotals(storageID uint, state string) ([]ItemTotal, error) {
	var totals []ItemTotal
	err := s.db.Model(&models.Lot{}).
		Select("material_key AS item_key, MAX(material_display) AS item_display, SUM(qty) AS qty").
		Where("storage_id = ? AND state = ?", storageID, state).
		Group("material_key").
		Having("SUM(qty) > 0").
		Order("LOWER(MAX(material_display))").
		Scan(&totals).Error
	return totals, err
}

// takeLots выполняет FIFO-списание материала внутри открытой транзакции.
// Состояния обходятся по порядку: к сушеным лотам переходим только после
// полного исчерпания свежих по этому ключу.
func takeLots(tx *gorm.DB, storageID uint, materialKey string, qty int) (int, error) {
	taken := 0
	remaining := qty

	for _, state := range []string{models.LotStateFresh, models.LotStateDried} {
		if remaining <= 0 {
			break
		}

		var lots []models.Lot
		if err := tx.Where("storage_id = ? AND material_key = ? AND state = ?",
			storageID, materialKey, state).
			Order("added_at ASC, id ASC").
			Find(&lots).Error; err != nil {
			return taken, err
		}

		for _, lot := range lots {
			if remaining <= 0 {
				break
			}
			if lot.Qty <= remaining {
				if err := tx.Delete(&models.Lot{}, lot.ID).Error; err != nil {
					return taken, err
				}
				remaining -= lot.Qty
				taken += lot.Qty
			} else {
				if err := tx.Model(&models.Lot{}).Where("id = ?", lot.ID).
					Update("qty", lot.Qty-remaining).Error; err != nil {
					return taken, err
				}
				taken += remaining
				remaining = 0
			}
		}
	}

	return taken, nil
}

// totalLots суммирует запас материала по обоим состояниям
func totalLots(tx *gorm.DB, storageID uint, materialKey string) (int, error) {
	var total int64
	err := tx.Model(&models.Lot{}).
		Select("COALESCE(SUM(qty), 0)").
		Where("storage_id = ? AND material_key = ?", storageID, materialKey).
		Scan(&total).Error
	return int(total), err
}

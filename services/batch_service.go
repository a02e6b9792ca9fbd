package services

import (
	"time"

	"larder-backend/config"
	"larder-backend/models"

	"gorm.io/gorm"
)

// Статусы порчи добычи
const (
	SpoilFresh  = "fresh"
	SpoilSmelly = "smelly"
	SpoilRuined = "ruined"
)

// Пороги порчи по сезонам: дни до запаха и дни до полной порчи
var seasonSpoilThresholds = map[string][2]int{
	models.SeasonNewleaf:   {4, 7},
	models.SeasonGreenleaf: {2, 5},
	models.SeasonLeaffall:  {4, 7},
	models.SeasonLeafbare:  {7, 10},
}

// Пороги вне сезонного режима
var defaultSpoilThresholds = [2]int{7, 14}

var spoilRank = map[string]int{
	SpoilFresh:  0,
	SpoilSmelly: 1,
	SpoilRuined: 2,
}

// ItemTotal представляет суммарный запас одного предмета на складе
type ItemTotal struct {
	ItemKey     string `json:"item_key"`
	ItemDisplay string `json:"item_display"`
	Qty         int    `json:"qty"`
}

// SpoilThresholds возвращает действующую пару порогов. В сезонном режиме
// пороги берутся из таблицы сезонов, неизвестный сезон откатывается к
// порогам по умолчанию.
func SpoilThresholds(season string, seasonal bool) (int, int) {
	if seasonal {
		if t, ok := seasonSpoilThresholds[season]; ok {
			return t[0], t[1]
		}
	}
	return defaultSpoilThresholds[0], defaultSpoilThresholds[1]
}

// SpoilageStatus классифицирует партию по возрасту в целых днях
func SpoilageStatus(ageDays int, season string, seasonal bool) string {
	smell, ruin := SpoilThresholds(season, seasonal)
	if ageDays >= ruin {
		return SpoilRuined
	}
	if ageDays >= smell {
		return SpoilSmelly
	}
	return SpoilFresh
}

// AgeDays возвращает возраст партии в целых днях
func AgeDays(addedAt, now time.Time) int {
	if now.Before(addedAt) {
		return 0
	}
	return int(now.Sub(addedAt).Hours() / 24)
}

// PileStatus возвращает статус всей кучи: худший статус среди живых партий.
// Одна испорченная партия портит отображаемый статус всей кучи; сами строки
// при этом не меняются и не удаляются.
func PileStatus(batches []models.Batch, now time.Time, season string, seasonal bool) string {
	worst := SpoilFresh
	for _, batch := range batches {
		status := SpoilageStatus(AgeDays(batch.AddedAt, now), season, seasonal)
		if spoilRank[status] > spoilRank[worst] {
			worst = status
		}
	}
	return worst
}

// BatchService предоставляет методы для работы с партиями добычи
type BatchService struct {
	db *gorm.DB
}

// NewBatchService создает новый сервис партий
func NewBatchService(db *gorm.DB) *BatchService {
	return &BatchService{db: db}
}

// Add добавляет новую партию на склад. Партии никогда не сливаются:
// каждое поступление остается отдельной возрастной когортой, иначе
// ломается FIFO-списание.
func (s *BatchService) Add(storageID uint, itemDisplay string, qty int, actor int64) (*models.Batch, error) {
	batch := models.Batch{
		StorageID:   storageID,
		ItemKey:     config.NormalizeKey(itemDisplay),
		ItemDisplay: itemDisplay,
		Qty:         qty,
		AddedBy:     actor,
	}

	if err := s.db.Create(&batch).Error; err != nil {
		return nil, err
	}

	return &batch, nil
}

// Take списывает запрошенное количество предмета по FIFO: сперва самые
// старые партии. Полностью выбранная партия удаляется, частично выбранная
// уменьшается на месте. Возвращает фактически списанное количество,
// которое может быть меньше запрошенного.
func (s *BatchService) Take(storageID uint, itemDisplay string, qty int) (int, error) {
	key := config.NormalizeKey(itemDisplay)
	taken := 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var batches []models.Batch
		if err := tx.Where("storage_id = ? AND item_key = ?", storageID, key).
			Order("added_at ASC, id ASC").
			Find(&batches).Error; err != nil {
			return err
		}

		remaining := qty
		for _, batch := range batches {
			if remaining <= 0 {
				break
			}
			if batch.Qty <= remaining {
				if err := tx.Delete(&models.Batch{}, batch.ID).Error; err != nil {
					return err
				}
				remaining -= batch.Qty
				taken += batch.Qty
			} else {
				if err := tx.Model(&models.Batch{}).Where("id = ?", batch.ID).
					Update("qty", batch.Qty-remaining).Error; err != nil {
					return err
				}
				taken += remaining
				remaining = 0
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return taken, nil
}

// Totals возвращает суммарные запасы склада по предметам,
// упорядоченные по отображаемому имени без учета регистра
func (s *BatchService) Totals(storageID uint) ([]ItemTotal, error) {
	var totals []ItemTotal
	err := s.db.Model(&models.Batch{}).
		Select("item_key, MAX(item_display) AS item_display, SUM(qty) AS qty").
		Where("storage_id = ?", storageID).
		Group("item_key").
		Having("SUM(qty) > 0").
		Order("LOWER(MAX(item_display))").
		Scan(&totals).Error
	return totals, err
}

// Snapshot возвращает все живые партии склада от старых к новым.
// Партии не агрегируются: статус порчи считается по каждой партии
// отдельно и только потом сворачивается в статус кучи.
func (s *BatchService) Snapshot(storageID uint) ([]models.Batch, error) {
	var batches []models.Batch
	err := s.db.Where("storage_id = ?", storageID).
		Order("added_at ASC, id ASC").
		Find(&batches).Error
	return batches, err
}

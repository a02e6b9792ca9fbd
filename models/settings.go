package models

import (
	"time"

	"gorm.io/gorm"
)

// Сезоны, определяющие сроки порчи добычи
const (
	SeasonNewleaf   = "newleaf"
	SeasonGreenleaf = "greenleaf"
	SeasonLeaffall  = "leaffall"
	SeasonLeafbare  = "leafbare"
)

// Seasons перечисляет допустимые значения сезона
var Seasons = []string{SeasonNewleaf, SeasonGreenleaf, SeasonLeaffall, SeasonLeafbare}

// Settings хранит настройки одной гильдии. Строка создается лениво при
// первом обращении, поэтому дефолты задаются и здесь, и на уровне схемы.
type Settings struct {
	GuildID          int64     `json:"guild_id" gorm:"primaryKey;autoIncrement:false"`
	Season           string    `json:"season" gorm:"not null;size:20;default:newleaf"`
	SeasonalSpoilage bool      `json:"seasonal_spoilage" gorm:"default:false"`
	AutoDrying       bool      `json:"auto_drying" gorm:"default:false"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsValidSeason проверяет корректность значения сезона
func IsValidSeason(season string) bool {
	for _, s := range Seasons {
		if s == season {
			return true
		}
	}
	return false
}

// BeforeCreate хук для установки времени изменения настроек
func (s *Settings) BeforeCreate(tx *gorm.DB) error {
	s.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate хук для обновления времени изменения настроек
func (s *Settings) BeforeUpdate(tx *gorm.DB) error {
	s.UpdatedAt = time.Now()
	return nil
}

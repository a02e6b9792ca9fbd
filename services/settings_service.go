package services

import (
	"larder-backend/models"

	"gorm.io/gorm"
)

// SettingsService предоставляет методы для работы с настройками гильдии
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService создает новый сервис настроек
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// GetOrCreate возвращает настройки гильдии, лениво создавая строку
// с дефолтами при первом обращении
func (s *SettingsService) GetOrCreate(guildID int64) (*models.Settings, error) {
	var settings models.Settings
	err := s.db.Where("guild_id = ?", guildID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	settings = models.Settings{
		GuildID: guildID,
		Season:  models.SeasonNewleaf,
	}
	if err := s.db.Create(&settings).Error; err != nil {
		return nil, err
	}

	return &settings, nil
}

// SetSeason устанавливает сезон гильдии. Недопустимое значение сезона
// отклоняется с ErrInvalidSeason, запись не меняется.
func (s *SettingsService) SetSeason(guildID int64, season string) (*models.Settings, error) {
	if !models.IsValidSeason(season) {
		return nil, ErrInvalidSeason
	}

	settings, err := s.GetOrCreate(guildID)
	if err != nil {
		return nil, err
	}

	settings.Season = season
	if err := s.db.Save(settings).Error; err != nil {
		return nil, err
	}

	return settings, nil
}

// SetSeasonalSpoilage включает или выключает сезонные сроки порчи добычи.
// Повторная установка того же значения безвредна.
func (s *SettingsService) SetSeasonalSpoilage(guildID int64, active bool) (*models.Settings, error) {
	settings, err := s.GetOrCreate(guildID)
	if err != nil {
		return nil, err
	}

	settings.SeasonalSpoilage = active
	if err := s.db.Save(settings).Error; err != nil {
		return nil, err
	}

	return settings, nil
}

// SetAutoDrying включает или выключает автоматическую сушку материалов
func (s *SettingsService) SetAutoDrying(guildID int64, active bool) (*models.Settings, error) {
	settings, err := s.GetOrCreate(guildID)
	if err != nil {
		return nil, err
	}

	settings.AutoDrying = active
	if err := s.db.Save(settings).Error; err != nil {
		return nil, err
	}

	return settings, nil
}

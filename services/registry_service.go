package services

import (
	"strings"

	"larder-backend/models"

	"gorm.io/gorm"
)

// RegistryService предоставляет методы для работы с реестром складов
type RegistryService struct {
	db *gorm.DB
}

// NewRegistryService создает новый сервис реестра складов
func NewRegistryService(db *gorm.DB) *RegistryService {
	return &RegistryService{db: db}
}

// CreateStorage регистрирует новый склад гильдии. Тройка (гильдия, тип, имя)
// уникальна: при совпадении возвращается ErrStorageExists, уникальный индекс
// в схеме страхует проверку.
func (s *RegistryService) CreateStorage(guildID int64, storageType, name string, ownerRoleID int64) (*models.Storage, error) {
	// Проверяем, не занято ли имя
	var existing models.Storage
	err := s.db.Where("guild_id = ? AND type = ? AND name = ?", guildID, storageType, name).
		First(&existing).Error
	if err == nil {
		return nil, ErrStorageExists
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	storage := models.Storage{
		GuildID:     guildID,
		Type:        storageType,
		Name:        name,
		OwnerRoleID: ownerRoleID,
	}

	if err := s.db.Create(&storage).Error; err != nil {
		return nil, err
	}

	return &storage, nil
}

// ResolveStorage находит склад по тройке (гильдия, тип, имя)
func (s *RegistryService) ResolveStorage(guildID int64, storageType, name string) (*models.Storage, error) {
	var storage models.Storage
	err := s.db.Where("guild_id = ? AND type = ? AND name = ?", guildID, storageType, name).
		First(&storage).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrStorageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &storage, nil
}

// StorageNames возвращает имена складов гильдии одного типа,
// упорядоченные без учета регистра
func (s *RegistryService) StorageNames(guildID int64, storageType string) ([]string, error) {
	var names []string
	err := s.db.Model(&models.Storage{}).
		Where("guild_id = ? AND type = ?", guildID, storageType).
		Order("LOWER(name)").
		Pluck("name", &names).Error
	return names, err
}

// ListStorages возвращает все склады гильдии, сгруппированные по типу
func (s *RegistryService) ListStorages(guildID int64) ([]models.Storage, error) {
	var storages []models.Storage
	err := s.db.Where("guild_id = ?", guildID).
		Order("type").Order("LOWER(name)").
		Find(&storages).Error
	return storages, err
}

// SuggestStorages подбирает имена складов по подстроке для автодополнения.
// Сравнение без учета регистра, количество результатов ограничено limit.
func (s *RegistryService) SuggestStorages(guildID int64, storageType, query string, limit int) ([]string, error) {
	var names []string
	q := s.db.Model(&models.Storage{}).
		Where("guild_id = ? AND type = ?", guildID, storageType)
	if query != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query)+"%")
	}
	err := q.Order("LOWER(name)").Limit(limit).Pluck("name", &names).Error
	return names, err
}

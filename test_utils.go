package main

import (
	"larder-backend/models"
	"larder-backend/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB создает тестовую базу данных в памяти
func setupTestDB() *gorm.DB {
	db, _ := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	db.AutoMigrate(&models.Storage{}, &models.Batch{}, &models.Lot{}, &models.PantryEntry{}, &models.Settings{})
	return db
}

// createTestStorage создает склад для тестов
func createTestStorage(db *gorm.DB, guildID int64, storageType, name string, ownerRoleID int64) *models.Storage {
	storage := models.Storage{
		GuildID:     guildID,
		Type:        storageType,
		Name:        name,
		OwnerRoleID: ownerRoleID,
	}
	db.Create(&storage)
	return &storage
}

// memberTestToken создает токен рядового участника с указанными ролями
func memberTestToken(userID, guildID int64, roleIDs ...int64) string {
	token, _ := utils.GenerateJWT(userID, guildID, roleIDs, false, false, false)
	return token
}

// moderatorTestToken создает токен модератора
func moderatorTestToken(userID, guildID int64) string {
	token, _ := utils.GenerateJWT(userID, guildID, nil, true, false, false)
	return token
}

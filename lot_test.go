package main

import (
	"testing"
	"time"

	"larder-backend/models"
	"larder-backend/services"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// enableAutoDrying включает автосушку для тестовой гильдии
func enableAutoDrying(t *testing.T, db *gorm.DB, guildID int64) {
	settingsService := services.NewSettingsService(db)
	_, err := settingsService.SetAutoDrying(guildID, true)
	assert.NoError(t, err)
}

func TestLotAddIsFresh(t *testing.T) {
	db := setupTestDB()
	svc := services.NewLotService(db)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	lot, err := svc.Add(storage.ID, "Yarrow", 5, 7)
	assert.NoError(t, err)
	assert.Equal(t, models.LotStateFresh, lot.State)
	assert.Equal(t, "yarrow", lot.MaterialKey)
}

func TestApplyAgingDisabled(t *testing.T) {
	db := setupTestDB()
	svc := services.NewLotService(db)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	// Лот старше окна сушки, но автосушка не включена
	db.Create(&models.Lot{StorageID: storage.ID, MaterialKey: "yarrow", MaterialDisplay: "Yarrow", Qty: 5, State: models.LotStateFresh, AddedAt: time.Now().Add(-10 * 24 * time.Hour), AddedBy: 7})

	err := svc.ApplyAging(42, storage.ID)
	assert.NoError(t, err)

	var lot models.Lot
	db.First(&lot)
	assert.Equal(t, models.LotStateFresh, lot.State)
}

func TestApplyAging(t *testing.T) {
	db := setupTestDB()
	svc := services.NewLotService(db)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)
	enableAutoDrying(t, db, 42)

	now := time.Now()
	aged := models.Lot{StorageID: storage.ID, MaterialKey: "yarrow", MaterialDisplay: "Yarrow", Qty: 5, State: models.LotStateFresh, AddedAt: now.Add(-8 * 24 * time.Hour), AddedBy: 7}
	recent := models.Lot{StorageID: storage.ID, MaterialKey: "yarrow", MaterialDisplay: "Yarrow", Qty: 3, State: models.LotStateFresh, AddedAt: now.Add(-2 * 24 * time.Hour), AddedBy: 7}
	db.Create(&aged)
	db.Create(&recent)

	err := svc.ApplyAging(42, storage.ID)
	assert.NoError(t, err)

	// Отлежавшийся лот высох, недавний остался свежим; количество и
	// время поступления не изменились
	var lot models.Lot
	db.First(&lot, aged.ID)
	assert.Equal(t, models.LotStateDried, lot.State)
	assert.Equal(t, 5, lot.Qty)

	db.First(&lot, recent.ID)
	assert.Equal(t, models.LotStateFresh, lot.State)

	// Повторный вызов ничего не меняет
	err = svc.ApplyAging(42, storage.ID)
	assert.NoError(t, err)

	var driedCount int64
	db.Model(&models.Lot{}).Where("state = ?", models.LotStateDried).Count(&driedCount)
	assert.Equal(t, int64(1), driedCount)
}

func TestLotTakeFreshBeforeDried(t *testing.T) {
	db := setupTestDB()
	svc := services.NewLotService(db)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	now := time.Now()

	// Сушеный лот старше свежего, но свежие все равно уходят первыми
	dried := models.Lot{StorageID: storage.ID, MaterialKey: "yarrow", MaterialDisplay: "Yarrow", Qty: 4, State: models.LotStateDried, AddedAt: now.Add(-10 * 24 * time.Hour), AddedBy: 7}
	freshOld := models.Lot{StorageID: storage.ID, MaterialKey: "yarrow", MaterialDisplay: "Yarrow", Qty: 2, State: models.LotStateFresh, AddedAt: now.Add(-3 * 24 * time.Hour), AddedBy: 7}
	freshNew := models.Lot{StorageID: storage.ID, MaterialKey: "yarrow", MaterialDisplay: "Yarrow", Qty: 2, State: models.LotStateFresh, AddedAt: now.Add(-1 * 24 * time.Hour), AddedBy: 7}
	db.Create(&dried)
	db.Create(&freshOld)
	db.Create(&freshNew)

	taken, err := svc.Take(storage.ID, "Yarrow", 5)
	assert.NoError(t, err)
	assert.Equal(t, 5, taken)

	// Оба свежих лота выбраны, от сушеного осталось 3
	var lots []models.Lot
	db.Where("storage_id = ?", storage.ID).Find(&lots)
	assert.Len(t, lots, 1)
	assert.Equal(t, dried.ID, lots[0].ID)
	assert.Equal(t, 3, lots[0].Qty)
}

func TestLotTakeMoreThanAvailable(t *testing.T) {
	db := setupTestDB()
	svc := services.NewLotService(db)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	svc.Add(storage.ID, "Mint", 3, 7)

	taken, err := svc.Take(storage.ID, "Mint", 9)
	assert.NoError(t, err)
	assert.Equal(t, 3, taken)

	var count int64
	db.Model(&models.Lot{}).Where("storage_id = ?", storage.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestLotTotals(t *testing.T) {
	db := setupTestDB()
	svc := services.NewLotService(db)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	now := time.Now()
	db.Create(&models.Lot{StorageID: storage.ID, MaterialKey: "yarrow", MaterialDisplay: "Yarrow", Qty: 4, State: models.LotStateFresh, AddedAt: now, AddedBy: 7})
	db.Create(&models.Lot{StorageID: storage.ID, MaterialKey: "yarrow", MaterialDisplay: "Yarrow", Qty: 2, State: models.LotStateDried, AddedAt: now, AddedBy: 7})
	db.Create(&models.Lot{StorageID: storage.ID, MaterialKey: "mint", MaterialDisplay: "Mint", Qty: 1, State: models.LotStateFresh, AddedAt: now, AddedBy: 7})

	fresh, dried, err := svc.TotalsByState(storage.ID)
	assert.NoError(t, err)
	assert.Len(t, fresh, 2)
	assert.Len(t, dried, 1)
	assert.Equal(t, "Mint", fresh[0].ItemDisplay)
	assert.Equal(t, "Yarrow", fresh[1].ItemDisplay)
	assert.Equal(t, 2, dried[0].Qty)

	// Суммарная доступность складывает оба состояния
	total, err := svc.TotalAvailable(storage.ID, "Yarrow")
	assert.NoError(t, err)
	assert.Equal(t, 6, total)
}

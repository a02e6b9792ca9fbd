package main

import (
	"testing"

	"larder-backend/models"
	"larder-backend/services"

	"github.com/stretchr/testify/assert"
)

func TestPantryProduceUpsert(t *testing.T) {
	db := setupTestDB()
	svc := services.NewPantryService(db)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	err := svc.Produce(storage.ID, "Healing salve", 2, 7)
	assert.NoError(t, err)

	// Повторное производство наращивает существующий счетчик
	err = svc.Produce(storage.ID, "healing SALVE", 3, 8)
	assert.NoError(t, err)

	var entries []models.PantryEntry
	db.Where("storage_id = ?", storage.ID).Find(&entries)
	assert.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].Qty)
	assert.Equal(t, "healing salve", entries[0].ProductKey)
	assert.Equal(t, "Healing salve", entries[0].ProductDisplay)
	assert.Equal(t, int64(8), entries[0].UpdatedBy)
}

func TestPantryConsumePartial(t *testing.T) {
	db := setupTestDB()
	svc := services.NewPantryService(db)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	svc.Produce(storage.ID, "Healing salve", 5, 7)

	taken, err := svc.Consume(storage.ID, "Healing salve", 2)
	assert.NoError(t, err)
	assert.Equal(t, 2, taken)

	var entry models.PantryEntry
	err = db.Where("storage_id = ?", storage.ID).First(&entry).Error
	assert.NoError(t, err)
	assert.Equal(t, 3, entry.Qty)
}

func TestPantryConsumeDeletesAtZero(t *testing.T) {
	db := setupTestDB()
	svc := services.NewPantryService(db)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	svc.Produce(storage.ID, "Travel ration", 3, 7)

	// Запрошено больше остатка: списывается все, строка удаляется
	taken, err := svc.Consume(storage.ID, "Travel ration", 10)
	assert.NoError(t, err)
	assert.Equal(t, 3, taken)

	var count int64
	db.Model(&models.PantryEntry{}).Where("storage_id = ?", storage.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestPantryConsumeMissing(t *testing.T) {
	db := setupTestDB()
	svc := services.NewPantryService(db)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	taken, err := svc.Consume(storage.ID, "Calming mix", 1)
	assert.NoError(t, err)
	assert.Equal(t, 0, taken)
}

func TestPantryList(t *testing.T) {
	db := setupTestDB()
	svc := services.NewPantryService(db)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	svc.Produce(storage.ID, "Travel ration", 1, 7)
	svc.Produce(storage.ID, "Healing salve", 2, 7)

	// Кладовая чужого склада не попадает в выдачу
	other := createTestStorage(db, 42, models.StorageTypeMaterial, "Moor store", 1002)
	svc.Produce(other.ID, "Calming mix", 4, 7)

	entries, err := svc.List(storage.ID)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "Healing salve", entries[0].ProductDisplay)
	assert.Equal(t, "Travel ration", entries[1].ProductDisplay)
}

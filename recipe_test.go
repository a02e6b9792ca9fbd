package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"larder-backend/config"
	"larder-backend/models"
	"larder-backend/services"

	"github.com/stretchr/testify/assert"
)

func TestCraft(t *testing.T) {
	db := setupTestDB()
	cfg := config.Default()
	lots := services.NewLotService(db)
	svc := services.NewRecipeService(db, cfg)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	// Healing salve x2 требует 4 Yarrow и 2 Comfrey
	lots.Add(storage.ID, "Yarrow", 5, 7)
	lots.Add(storage.ID, "Comfrey", 2, 7)

	err := svc.Craft(42, storage.ID, "healing salve", 2, 7)
	assert.NoError(t, err)

	// Ингредиенты списаны
	yarrow, _ := lots.TotalAvailable(storage.ID, "Yarrow")
	comfrey, _ := lots.TotalAvailable(storage.ID, "Comfrey")
	assert.Equal(t, 1, yarrow)
	assert.Equal(t, 0, comfrey)

	// Продукт лежит в кладовой под каноническим именем
	var entry models.PantryEntry
	err = db.Where("storage_id = ?", storage.ID).First(&entry).Error
	assert.NoError(t, err)
	assert.Equal(t, "Healing salve", entry.ProductDisplay)
	assert.Equal(t, 2, entry.Qty)
}

func TestCraftConsumesAcrossStates(t *testing.T) {
	db := setupTestDB()
	cfg := config.Default()
	svc := services.NewRecipeService(db, cfg)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	// Запас размазан по состояниям: 1 свежий и 1 сушеный Yarrow
	db.Create(&models.Lot{StorageID: storage.ID, MaterialKey: "yarrow", MaterialDisplay: "Yarrow", Qty: 1, State: models.LotStateFresh, AddedBy: 7})
	db.Create(&models.Lot{StorageID: storage.ID, MaterialKey: "yarrow", MaterialDisplay: "Yarrow", Qty: 1, State: models.LotStateDried, AddedBy: 7})
	db.Create(&models.Lot{StorageID: storage.ID, MaterialKey: "comfrey", MaterialDisplay: "Comfrey", Qty: 1, State: models.LotStateDried, AddedBy: 7})

	err := svc.Craft(42, storage.ID, "Healing salve", 1, 7)
	assert.NoError(t, err)

	// Весь запас ушел в изготовление
	var count int64
	db.Model(&models.Lot{}).Where("storage_id = ?", storage.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCraftShortfall(t *testing.T) {
	db := setupTestDB()
	cfg := config.Default()
	lots := services.NewLotService(db)
	svc := services.NewRecipeService(db, cfg)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	// Yarrow хватает, Comfrey нет вовсе
	lots.Add(storage.ID, "Yarrow", 2, 7)

	err := svc.Craft(42, storage.ID, "Healing salve", 1, 7)
	assert.Error(t, err)

	stockErr, ok := err.(*services.InsufficientStockError)
	assert.True(t, ok)
	assert.Empty(t, stockErr.Disallowed)
	assert.Len(t, stockErr.Shortfalls, 1)
	assert.Equal(t, "Comfrey", stockErr.Shortfalls[0].Material)
	assert.Equal(t, 1, stockErr.Shortfalls[0].Required)
	assert.Equal(t, 0, stockErr.Shortfalls[0].Available)
	assert.Equal(t, 1, stockErr.Shortfalls[0].Missing)

	// Запасы не тронуты: проверка выполняется до любых списаний
	yarrow, _ := lots.TotalAvailable(storage.ID, "Yarrow")
	assert.Equal(t, 2, yarrow)

	var pantryCount int64
	db.Model(&models.PantryEntry{}).Count(&pantryCount)
	assert.Equal(t, int64(0), pantryCount)
}

func TestCraftReportsAllProblems(t *testing.T) {
	db := setupTestDB()
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	// Конфигурация с рецептом, где один ингредиент не входит в список
	// разрешенных материалов
	custom := `{
		"allowed_materials": ["Yarrow"],
		"recipes": {"Strange brew": {"Yarrow": 3, "Dragonscale": 1}}
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(path, []byte(custom), 0644)
	assert.NoError(t, err)

	cfg, err := config.Load(path)
	assert.NoError(t, err)

	lots := services.NewLotService(db)
	lots.Add(storage.ID, "Yarrow", 1, 7)

	svc := services.NewRecipeService(db, cfg)
	err = svc.Craft(42, storage.ID, "Strange brew", 1, 7)
	assert.Error(t, err)

	// Недопустимый ингредиент и недостача приходят одним списком
	stockErr, ok := err.(*services.InsufficientStockError)
	assert.True(t, ok)
	assert.Equal(t, []string{"Dragonscale"}, stockErr.Disallowed)
	assert.Len(t, stockErr.Shortfalls, 1)
	assert.Equal(t, "Yarrow", stockErr.Shortfalls[0].Material)
	assert.Equal(t, 2, stockErr.Shortfalls[0].Missing)
}

func TestCraftMultiplierShortfall(t *testing.T) {
	db := setupTestDB()
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	custom := `{
		"allowed_materials": ["Basil", "Thyme"],
		"recipes": {"Seasoning": {"Basil": 2, "Thyme": 1}}
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(path, []byte(custom), 0644)
	assert.NoError(t, err)

	cfg, err := config.Load(path)
	assert.NoError(t, err)

	lots := services.NewLotService(db)
	lots.Add(storage.ID, "Basil", 5, 7)
	lots.Add(storage.ID, "Thyme", 10, 7)

	// Тройная порция требует 6 Basil при наличии 5
	svc := services.NewRecipeService(db, cfg)
	err = svc.Craft(42, storage.ID, "Seasoning", 3, 7)
	assert.Error(t, err)

	stockErr, ok := err.(*services.InsufficientStockError)
	assert.True(t, ok)
	assert.Len(t, stockErr.Shortfalls, 1)
	assert.Equal(t, "Basil", stockErr.Shortfalls[0].Material)
	assert.Equal(t, 6, stockErr.Shortfalls[0].Required)
	assert.Equal(t, 5, stockErr.Shortfalls[0].Available)
	assert.Equal(t, 1, stockErr.Shortfalls[0].Missing)

	// Ни один ингредиент не списан
	basil, _ := lots.TotalAvailable(storage.ID, "Basil")
	thyme, _ := lots.TotalAvailable(storage.ID, "Thyme")
	assert.Equal(t, 5, basil)
	assert.Equal(t, 10, thyme)
}

func TestCraftUnknownRecipe(t *testing.T) {
	db := setupTestDB()
	cfg := config.Default()
	svc := services.NewRecipeService(db, cfg)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	err := svc.Craft(42, storage.ID, "Dragon stew", 1, 7)
	assert.Equal(t, services.ErrRecipeNotFound, err)
}

func TestCraftExactStock(t *testing.T) {
	db := setupTestDB()
	cfg := config.Default()
	lots := services.NewLotService(db)
	svc := services.NewRecipeService(db, cfg)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)

	// Запас ровно под рецепт: Travel ration требует 1 Mint и 2 Nettle
	lots.Add(storage.ID, "Mint", 1, 7)
	lots.Add(storage.ID, "Nettle", 2, 7)

	err := svc.Craft(42, storage.ID, "Travel ration", 1, 7)
	assert.NoError(t, err)

	var count int64
	db.Model(&models.Lot{}).Where("storage_id = ?", storage.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCraftAppliesAging(t *testing.T) {
	db := setupTestDB()
	cfg := config.Default()
	svc := services.NewRecipeService(db, cfg)
	storage := createTestStorage(db, 42, models.StorageTypeMaterial, "Herb store", 1002)
	enableAutoDrying(t, db, 42)

	// Отлежавшиеся свежие лоты должны высохнуть до списания
	db.Create(&models.Lot{StorageID: storage.ID, MaterialKey: "mint", MaterialDisplay: "Mint", Qty: 1, State: models.LotStateFresh, AddedAt: time.Now().Add(-9 * 24 * time.Hour), AddedBy: 7})
	db.Create(&models.Lot{StorageID: storage.ID, MaterialKey: "nettle", MaterialDisplay: "Nettle", Qty: 2, State: models.LotStateFresh, AddedAt: time.Now().Add(-9 * 24 * time.Hour), AddedBy: 7})

	err := svc.Craft(42, storage.ID, "Travel ration", 1, 7)
	assert.NoError(t, err)

	var entry models.PantryEntry
	err = db.Where("storage_id = ?", storage.ID).First(&entry).Error
	assert.NoError(t, err)
	assert.Equal(t, 1, entry.Qty)
}

package models

import (
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Типы складов
const (
	StorageTypePerishable = "perishable" // датированные партии скоропортящихся запасов
	StorageTypeMaterial   = "material"   // лоты материалов (свежие/сушеные) плюс кладовая
)

// Storage представляет склад гильдии, привязанный к роли-владельцу.
// Тройка (гильдия, тип, имя) уникальна; после создания склад не изменяется.
type Storage struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	GuildID     int64     `json:"guild_id" gorm:"not null;uniqueIndex:idx_storages_guild_type_name,priority:1"`
	Type        string    `json:"type" gorm:"not null;size:20;uniqueIndex:idx_storages_guild_type_name,priority:2"`
	Name        string    `json:"name" gorm:"not null;size:100;uniqueIndex:idx_storages_guild_type_name,priority:3"`
	OwnerRoleID int64     `json:"owner_role_id" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsValidStorageType проверяет, что тип склада входит в допустимый набор
func IsValidStorageType(t string) bool {
	return t == StorageTypePerishable || t == StorageTypeMaterial
}

// InitDB инициализирует подключение к базе данных
func InitDB() (*gorm.DB, error) {
	// Проверяем переменную окружения для выбора базы данных
	databaseURL := os.Getenv("DATABASE_URL")

	if databaseURL != "" {
		// Используем PostgreSQL для продакшена
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	// Используем SQLite для разработки
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "larder.db"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Включаем каскадное удаление по внешним ключам в SQLite
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}

	return db, nil
}

// BeforeCreate хук для установки времени создания
func (s *Storage) BeforeCreate(tx *gorm.DB) error {
	s.CreatedAt = time.Now()
	return nil
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Состояния лота материала
const (
	LotStateFresh = "fresh" // свежий, только что добавленный
	LotStateDried = "dried" // высушенный по прошествии срока сушки
)

// Lot представляет одну партию материала. Лот всегда создается свежим и
// переходит в сушеное состояние на месте: количество и время поступления
// при переходе не меняются.
type Lot struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	StorageID       uint      `json:"storage_id" gorm:"not null;index:idx_lots_storage_material,priority:1"`
	MaterialKey     string    `json:"material_key" gorm:"not null;size:100;index:idx_lots_storage_material,priority:2"`
	MaterialDisplay string    `json:"material_display" gorm:"not null;size:100"`
	Qty             int       `json:"qty" gorm:"not null"`
	State           string    `json:"state" gorm:"not null;size:10"`
	AddedAt         time.Time `json:"added_at" gorm:"not null"`
	AddedBy         int64     `json:"added_by"`

	// Связи
	Storage Storage `json:"-" gorm:"foreignKey:StorageID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate хук для установки времени поступления лота
func (l *Lot) BeforeCreate(tx *gorm.DB) error {
	if l.AddedAt.IsZero() {
		l.AddedAt = time.Now()
	}
	return nil
}

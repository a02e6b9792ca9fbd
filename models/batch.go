package models

import (
	"time"

	"gorm.io/gorm"
)

// Batch представляет одну партию скоропортящегося продукта: каждое
// добавление создает отдельную партию со своим временем поступления.
// Партии никогда не сливаются, иначе FIFO-списание потеряло бы возраст.
type Batch struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	StorageID   uint      `json:"storage_id" gorm:"not null;index:idx_batches_storage_item,priority:1"`
	ItemKey     string    `json:"item_key" gorm:"not null;size:100;index:idx_batches_storage_item,priority:2"`
	ItemDisplay string    `json:"item_display" gorm:"not null;size:100"`
	Qty         int       `json:"qty" gorm:"not null"`
	AddedAt     time.Time `json:"added_at" gorm:"not null"`
	AddedBy     int64     `json:"added_by"`

	// Связи
	Storage Storage `json:"-" gorm:"foreignKey:StorageID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate хук для установки времени поступления партии
func (b *Batch) BeforeCreate(tx *gorm.DB) error {
	if b.AddedAt.IsZero() {
		b.AddedAt = time.Now()
	}
	return nil
}

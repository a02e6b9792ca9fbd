package models

import (
	"time"

	"gorm.io/gorm"
)

// PantryEntry представляет запас готового продукта на складе. В отличие от
// лотов и партий здесь нет отдельных строк на каждое поступление: запас
// хранится одним счетчиком на пару (склад, продукт). Строка с нулевым
// количеством удаляется целиком.
type PantryEntry struct {
	StorageID      uint      `json:"storage_id" gorm:"primaryKey;autoIncrement:false"`
	ProductKey     string    `json:"product_key" gorm:"primaryKey;size:100"`
	ProductDisplay string    `json:"product_display" gorm:"not null;size:100"`
	Qty            int       `json:"qty" gorm:"not null"`
	UpdatedAt      time.Time `json:"updated_at"`
	UpdatedBy      int64     `json:"updated_by"`

	// Связи
	Storage Storage `json:"-" gorm:"foreignKey:StorageID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate хук для установки времени изменения запаса
func (p *PantryEntry) BeforeCreate(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate хук для обновления времени изменения запаса
func (p *PantryEntry) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}

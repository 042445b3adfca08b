package models

import (
	"time"

	"gorm.io/gorm"
)

// MenuItem represents a dish on the restaurant menu. Orders keep their
// own name/price snapshots, so editing or deleting a menu item does not
// affect past orders.
type MenuItem struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Price       float64        `gorm:"not null;check:price >= 0" json:"price"`
	Category    string         `json:"category"`
	ImageURL    string         `json:"imageUrl"`
	Available   bool           `gorm:"not null;default:true" json:"available"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the MenuItem model
func (MenuItem) TableName() string {
	return "menuitems"
}

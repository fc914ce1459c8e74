package models

import (
	"time"

	"gorm.io/gorm"
)

// Item represents a physical item a user offers for borrowing.
type Item struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"`
	Owner       *User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Title       string         `gorm:"size:160;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"size:60;index" json:"category"`
	Community   string         `gorm:"size:120;not null;index" json:"community"`
	ImageURL    string         `json:"image_url"`
	Available   bool           `gorm:"not null;default:true" json:"available"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (Item) TableName() string {
	return "items"
}

package model

import (
	"time"
)

// Business represents a registered local business
type Business struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Category    string    `json:"category" gorm:"type:varchar(50);not null"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Description string    `json:"description" gorm:"type:text"`
	ImageURL    *string   `json:"image_url" gorm:"type:varchar(255)"`
	UserID      uint      `json:"user_id" gorm:"index;not null"` // Reference to the Emprendedor who owns this business
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Favorites []Favorite `json:"-" gorm:"foreignKey:BusinessID"`
}

package model

import (
	"time"
)

// Favorite bookmarks a business for a user. The composite unique index is
// the authoritative guard against duplicate pairs: concurrent adds for the
// same (user_id, business_id) race at the application level, so the insert
// itself must fail rather than a prior existence check.
type Favorite struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_favorites_user_business"`
	BusinessID uint      `json:"business_id" gorm:"not null;uniqueIndex:idx_favorites_user_business"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	Business Business `json:"-" gorm:"foreignKey:BusinessID"`
}

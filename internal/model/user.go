package model

import (
	"time"
)

// User types supported by the platform. Emprendedores own businesses,
// Clientes browse and favorite them.
const (
	UserTypeCliente     = "Cliente"
	UserTypeEmprendedor = "Emprendedor"
)

// User represents the user model stored in the database
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Email     string    `json:"email" gorm:"type:varchar(100);index;not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	Document  string    `json:"document" gorm:"type:varchar(50);uniqueIndex;not null"`
	Phone     string    `json:"phone" gorm:"type:varchar(30)"`
	Address   string    `json:"address" gorm:"type:varchar(255)"`
	UserType  string    `json:"user_type" gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Businesses []Business `json:"businesses,omitempty" gorm:"foreignKey:UserID"`
	Favorites  []Favorite `json:"-" gorm:"foreignKey:UserID"`
}

// ValidUserType reports whether t is one of the supported user types.
func ValidUserType(t string) bool {
	return t == UserTypeCliente || t == UserTypeEmprendedor
}

package domain

import (
	"time" // Timestamps

	"github.com/google/uuid" // Opaque identifiers
	"gorm.io/gorm"           // GORM ORM library
)

// User Model
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`               // Opaque identifier
	Username  string    `gorm:"size:64;not null" json:"username"`            // Display name
	Email     string    `gorm:"uniqueIndex;size:191;not null" json:"email"`  // Unique, lower-cased
	Password  string    `gorm:"not null" json:"-"`                           // Hashed password, never exposed
	Role      Role      `gorm:"size:16;not null;default:User" json:"role"`   // User or Creator
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns an id when the caller did not
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

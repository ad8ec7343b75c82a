package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered marketplace user
type User struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Username      string    `json:"username" db:"username"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"` // Hidden from JSON responses
	ContactNumber *string   `json:"contactNumber,omitempty" db:"contact_number"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// SellerInfo is the public-safe subset of a user attached to listings
type SellerInfo struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	ContactNumber *string   `json:"contactNumber,omitempty"`
}

// PublicInfo returns the seller-facing subset of the user record
func (u *User) PublicInfo() SellerInfo {
	return SellerInfo{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		ContactNumber: u.ContactNumber,
	}
}

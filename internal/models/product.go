package models

import (
	"time"

	"github.com/google/uuid"
)

// Product categories form a closed enumeration
const (
	CategoryBooks       = "Books"
	CategoryElectronics = "Electronics"
	CategoryFurniture   = "Furniture"
	CategoryApparel     = "Apparel"
	CategorySports      = "Sports"
	CategoryAccessories = "Accessories"
	CategoryOther       = "Other"
)

// Categories lists all valid product categories
var Categories = []string{
	CategoryBooks,
	CategoryElectronics,
	CategoryFurniture,
	CategoryApparel,
	CategorySports,
	CategoryAccessories,
	CategoryOther,
}

// ValidCategory reports whether c is a member of the category enumeration
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Product represents an item listed for sale
type Product struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	Title          string      `json:"title" db:"title"`
	Description    string      `json:"description" db:"description"`
	Price          float64     `json:"price" db:"price"`
	Category       string      `json:"category" db:"category"`
	Images         []string    `json:"images" db:"images"`
	SellerID       uuid.UUID   `json:"sellerId" db:"seller_id"`
	Seller         *SellerInfo `json:"seller,omitempty"` // populated on reads that expand the seller
	ContactInfo    string      `json:"contactInfo" db:"contact_info"`
	WhatsappNumber string      `json:"whatsappNumber" db:"whatsapp_number"`
	IsSold         bool        `json:"isSold" db:"is_sold"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time   `json:"updatedAt" db:"updated_at"`
}

// OwnerID returns the owning seller's key for ownership authorization
func (p *Product) OwnerID() uuid.UUID {
	return p.SellerID
}

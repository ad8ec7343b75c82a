package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"CAMPUSMARKET_BACK-END/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateUser is returned when the email or username is already taken
	ErrDuplicateUser = errors.New("email or username already registered")
)

// ProductFilter narrows a listing search. Zero values mean "no filter";
// sold listings are always excluded from search results.
type ProductFilter struct {
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// UserStore persists user records
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ProductStore persists listing records
type ProductStore interface {
	CreateProduct(ctx context.Context, product *models.Product) error

	// GetProduct returns the listing with the seller's public subset populated
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)

	// SearchProducts returns active listings matching the filter, newest first
	SearchProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)

	// ProductsBySeller returns all of a seller's listings regardless of sold
	// state, newest first
	ProductsBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Product, error)

	// UpdateProduct writes the mutable fields of the listing. The seller
	// reference and sold flag are never touched by an update.
	UpdateProduct(ctx context.Context, product *models.Product) error

	// MarkSold flips the sold flag. Returns false when the listing was
	// already sold; the flag never transitions back.
	MarkSold(ctx context.Context, id uuid.UUID) (bool, error)

	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

package middleware

import (
	"errors"

	"github.com/google/uuid"

	"CAMPUSMARKET_BACK-END/internal/models"
)

var (
	// ErrAuthRequired means no identity was resolved before the check
	ErrAuthRequired = errors.New("authentication required")

	// ErrResourceMissing means no resource was fetched before the check
	ErrResourceMissing = errors.New("resource not found")

	// ErrNotOwner means the identity does not own the resource
	ErrNotOwner = errors.New("not resource owner")
)

// Owned is implemented by resources that record an owning user
type Owned interface {
	OwnerID() uuid.UUID
}

// AuthorizeOwner decides whether user may mutate resource. It is a pure
// decision over two already-materialized inputs: the identity must be
// resolved, the resource must be fetched, and the resource's recorded owner
// must equal the identity's key.
func AuthorizeOwner(user *models.User, resource Owned) error {
	if user == nil {
		return ErrAuthRequired
	}
	if resource == nil {
		return ErrResourceMissing
	}
	ownerID := resource.OwnerID()
	if ownerID == uuid.Nil || ownerID.String() != user.ID.String() {
		return ErrNotOwner
	}
	return nil
}

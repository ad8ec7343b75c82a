package media

import (
	"context"
	"io"
)

// Store is the media delegate holding listing images. Implementations
// return a public URL on upload and accept that URL back for deletion.
type Store interface {
	Upload(ctx context.Context, filename string, contents io.Reader) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

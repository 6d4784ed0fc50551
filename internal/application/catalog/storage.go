package catalog

import (
	"context"
)

// ObjectStorageService abstracts the object store that holds product images.
// Implementations live in infrastructure/storage.
type ObjectStorageService interface {
	// Upload stores data under storageKey with the given content type
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// Delete removes the object stored under storageKey
	Delete(ctx context.Context, storageKey string) error

	// PublicURL returns the URL clients use to fetch the object
	PublicURL(storageKey string) string
}

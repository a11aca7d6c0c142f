package storage

import (
	"context"
	"io"
)

// Media folders used for chat uploads and repair images.
const (
	FolderChatImages    = "chat/images"
	FolderChatVideos    = "chat/videos"
	FolderChatFiles     = "chat/files"
	FolderChatAudio     = "chat/audio"
	FolderRepairImages  = "repairs/images"
	FolderVehicleImages = "vehicles/images"
	FolderReports       = "reports"
)

// Storage abstracts the object store. The database only ever holds object
// keys; signed URLs are derived on the way out.
type Storage interface {
	// Upload stores the object and returns its key.
	Upload(ctx context.Context, folder, filename string, body io.Reader, contentType string) (string, error)

	// Download fetches the object body.
	Download(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object. Deleting an empty key is a no-op.
	Delete(ctx context.Context, key string) error

	// SignedURL returns a time-limited read URL for the key.
	SignedURL(ctx context.Context, key string) (string, error)

	// ExtractKeyFromSignedURL recovers the object key from a signed URL.
	// Returns the input unchanged if it is not a URL.
	ExtractKeyFromSignedURL(rawURL string) string
}

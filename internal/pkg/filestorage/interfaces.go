package filestorage

import (
	"errors"
	"io"
)

// MaxImageSize is the largest accepted image upload
const MaxImageSize = 10 << 20

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidKey      = errors.New("invalid storage key")
)

// FileStorage stores blobs under slash separated keys
type FileStorage interface {
	// Save writes r under key and returns the public URL of the blob
	Save(key string, r io.Reader) (string, error)

	// Delete removes the blob behind a key or URL. Missing blobs are not an error.
	Delete(keyOrURL string) error
}

package services

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/dreamline/mentorlink/internal/pkg/filestorage"
)

// Upload is an image received from a client
type Upload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// storeImage validates an image upload and saves it under feature
func storeImage(storage filestorage.FileStorage, feature string, upload *Upload, now time.Time) (string, error) {
	if storage == nil {
		return "", fmt.Errorf("image uploads are not configured")
	}

	r, _, err := filestorage.CheckImage(upload.Reader, upload.Size)
	if err != nil {
		switch {
		case errors.Is(err, filestorage.ErrUnsupportedType):
			return "", apperrors.NewValidationError("image", "Only JPEG, PNG, GIF and WebP images are accepted")
		case errors.Is(err, filestorage.ErrFileTooLarge):
			return "", apperrors.NewValidationError("image", "Image must be at most 10 MiB")
		}
		return "", err
	}

	url, err := storage.Save(filestorage.BuildKey(feature, upload.Filename, now), r)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, nil
}

package filestorage

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/dreamline/mentorlink/internal/pkg/logger"
)

// PublicPrefix is the URL path uploads are served under when no base URL is configured
const PublicPrefix = "/uploads"

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // Prepended to keys to build public URLs
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is the required directory path on the server.
// baseURL is optional; without it URLs are relative to PublicPrefix.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	if baseURL == "" {
		baseURL = PublicPrefix
	}
	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// BasePath returns the storage root, used to serve files statically
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// Save writes r under key and returns its public URL
func (ls *LocalStorage) Save(key string, r io.Reader) (string, error) {
	dstPath, err := ls.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, r); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	url := ls.URL(key)
	logger.Info().Str("key", key).Str("url", url).Msg("File saved successfully")
	return url, nil
}

// URL returns the public URL of a key
func (ls *LocalStorage) URL(key string) string {
	return ls.baseURL + "/" + strings.TrimLeft(key, "/")
}

// Delete removes a file from storage. Returns nil if the file doesn't exist.
func (ls *LocalStorage) Delete(keyOrURL string) error {
	if keyOrURL == "" {
		return nil
	}
	key := strings.TrimPrefix(keyOrURL, ls.baseURL+"/")

	physicalPath, err := ls.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// resolve maps a key onto a path inside basePath
func (ls *LocalStorage) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(clean)), nil
}

// BuildKey returns "{feature}/{unixMillis}_{filename}" with the filename
// reduced to a safe character set.
func BuildKey(feature, filename string, now time.Time) string {
	return strings.Trim(feature, "/") + "/" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + SanitizeFilename(filename)
}

// SanitizeFilename keeps letters, digits, dot, dash and underscore
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

// CheckImage sniffs the content type of an upload and enforces the size
// limit. The returned reader replays the sniffed bytes.
func CheckImage(r io.Reader, size int64) (io.Reader, string, error) {
	if size > MaxImageSize {
		return nil, "", fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, size, MaxImageSize)
	}

	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}

	contentType := http.DetectContentType(head)
	if !imageTypes[contentType] {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	return br, contentType, nil
}

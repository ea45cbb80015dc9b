package filestorage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallest valid PNG header plus padding is enough for sniffing
var pngHeader = append([]byte("\x89PNG\x0D\x0A\x1A\x0A"), make([]byte, 32)...)

func TestBuildKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "chatImages/a_b/1700000000123_my_photo.png", BuildKey("chatImages/a_b/", "my photo.png", now))
	assert.Equal(t, "boardImages/1700000000123_passwd", BuildKey("boardImages", "../../etc/passwd", now))
	assert.Equal(t, "boardImages/1700000000123_file", BuildKey("boardImages", "", now))
}

func TestSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "")
	require.NoError(t, err)

	url, err := ls.Save("boardImages/1_a.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/boardImages/1_a.png", url)

	onDisk, err := os.ReadFile(filepath.Join(dir, "boardImages", "1_a.png"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, onDisk)

	require.NoError(t, ls.Delete(url))
	_, err = os.Stat(filepath.Join(dir, "boardImages", "1_a.png"))
	assert.True(t, os.IsNotExist(err))

	// deleting again is fine
	assert.NoError(t, ls.Delete(url))
}

func TestSaveWithBaseURL(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "https://cdn.example.com/files/")
	require.NoError(t, err)

	url, err := ls.Save("x/1_b.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/files/x/1_b.png", url)
}

func TestSaveRejectsEscapingKeys(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = ls.Save("../outside.png", bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = ls.Save("", bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestCheckImage(t *testing.T) {
	r, contentType, err := CheckImage(bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	replayed, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, replayed)

	_, _, err = CheckImage(strings.NewReader("plain text, not an image"), 24)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, _, err = CheckImage(bytes.NewReader(pngHeader), MaxImageSize+1)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

package migrations

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingOrdersSQLFiles(t *testing.T) {
	files := fstest.MapFS{
		"010_later.sql": {Data: []byte("SELECT 1;")},
		"002_board.sql": {Data: []byte("SELECT 1;")},
		"001_init.sql":  {Data: []byte("SELECT 1;")},
		"README.md":     {Data: []byte("notes")},
	}

	names, err := Pending(files)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_board.sql", "010_later.sql"}, names)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "001", Version("001_init.sql"))
	assert.Equal(t, "002", Version("sql/002_board_and_comments.sql"))
}

func TestEmbeddedMigrationsCoverSchema(t *testing.T) {
	sub, err := fs.Sub(embedded, "sql")
	require.NoError(t, err)

	names, err := Pending(sub)
	require.NoError(t, err)
	require.NotEmpty(t, names)

	var all strings.Builder
	for _, name := range names {
		b, err := fs.ReadFile(sub, name)
		require.NoError(t, err)
		all.Write(b)
	}

	for _, table := range []string{"users", "requests", "chats", "chat_messages", "chat_assignments", "mentor_ratings", "posts", "post_comments"} {
		assert.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS "+table+" ", table)
	}
}

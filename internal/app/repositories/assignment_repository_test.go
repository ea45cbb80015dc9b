package repositories

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceAssignmentKeepsActiveRow(t *testing.T) {
	stmt := strings.Join(strings.Fields(replaceAssignment), " ")

	assert.Contains(t, stmt, "ON CONFLICT (chat_id) DO UPDATE SET")
	assert.True(t, strings.HasSuffix(stmt, "WHERE chat_assignments.is_completed"))
}

package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	p := NewPage(3, 20)
	assert.EqualValues(t, 40, p.Offset())
	assert.Equal(t, 20, p.Size)

	p = NewPage(0, 1000)
	assert.EqualValues(t, 0, p.Offset())
	assert.Equal(t, DefaultPageSize, p.Size)
}

func TestPageInfo(t *testing.T) {
	info := NewPage(3, 10).Info(21)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 3, info.CurrentPage)

	empty := NewPage(1, 10).Info(0)
	assert.Equal(t, 1, empty.TotalPages)

	clamped := NewPage(9, 10).Info(5)
	assert.Equal(t, 1, clamped.CurrentPage)
}

func TestPageFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/posts?page=2&size=abc", nil)

	assert.Equal(t, Page{Number: 2, Size: DefaultPageSize}, PageFromQuery(c))
}

func TestParseDurationFallsBack(t *testing.T) {
	assert.Equal(t, time.Hour, ParseDuration("1h", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, DaysUntil(now, now.Add(-time.Hour)))
	assert.Equal(t, 1, DaysUntil(now, now.Add(time.Hour)))
	assert.Equal(t, 4, DaysUntil(now, now.Add(4*24*time.Hour)))
}

func TestNullText(t *testing.T) {
	assert.False(t, NullText("").Valid)
	assert.Equal(t, "x", NullText("x").String)
}

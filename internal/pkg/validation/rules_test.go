package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("Mentor@Example.co.kr"))
	assert.False(t, ValidEmail("no-at-sign"))
	assert.False(t, ValidEmail(""))
}

func TestValidPasswordBounds(t *testing.T) {
	assert.False(t, ValidPassword("short"))
	assert.True(t, ValidPassword("longenough"))
	assert.False(t, ValidPassword(string(make([]byte, PasswordMaxLength+1))))
}

func TestValidNameCountsRunes(t *testing.T) {
	assert.True(t, ValidName("김민준"))
	assert.False(t, ValidName("   "))
}

func TestValidAge(t *testing.T) {
	assert.True(t, ValidAge(0))
	assert.True(t, ValidAge(35))
	assert.False(t, ValidAge(-1))
	assert.False(t, ValidAge(121))
}

func TestCustomBindingTags(t *testing.T) {
	RegisterGinValidators()
	RegisterGinValidators()

	type payload struct {
		Major string `binding:"required,major"`
		Role  string `binding:"required,userrole"`
	}

	assert.NoError(t, binding.Validator.ValidateStruct(&payload{Major: "IT", Role: "mentor"}))
	assert.Error(t, binding.Validator.ValidateStruct(&payload{Major: "Cooking", Role: "mentor"}))
	assert.Error(t, binding.Validator.ValidateStruct(&payload{Major: "IT", Role: "admin"}))
}

package validation

import (
	"sync"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterGinValidators adds the custom binding tags to gin's validator engine:
//
//	major    the value is a top level category of the taxonomy
//	userrole the value is a known user role
func RegisterGinValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("major", func(fl validator.FieldLevel) bool {
			return models.ValidCategory(models.Category{Major: fl.Field().String()}, true)
		})
		_ = v.RegisterValidation("userrole", func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).Valid()
		})
	})
}

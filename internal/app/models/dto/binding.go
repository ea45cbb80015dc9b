package dto

import "github.com/dreamline/mentorlink/internal/pkg/validation"

// The request DTOs use the custom "major" and "userrole" binding tags.
func init() {
	validation.RegisterGinValidators()
}

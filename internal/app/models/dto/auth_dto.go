package dto

import "github.com/dreamline/mentorlink/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a student or mentor sign up
type RegisterRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Name     string      `json:"name" binding:"required,max=100"`
	Age      int         `json:"age" binding:"min=0,max=120"`
	Role     models.Role `json:"role" binding:"required,userrole"`
	Major    string      `json:"major" binding:"required,major"`
	Middle   string      `json:"middle"`
	Minor    string      `json:"minor"`
	Career   string      `json:"career" binding:"max=2000"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  *UserResponse `json:"user"`
}

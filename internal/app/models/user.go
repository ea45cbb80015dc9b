package models

import (
	"strings"
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Age          int       `json:"age" db:"age"`
	Role         Role      `json:"role" db:"role"`
	Category     Category  `json:"category"`
	Career       string    `json:"career" db:"career"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	// Rating is only meaningful for mentors
	Rating RatingSummary `json:"rating"`
}

// IsMentor reports whether the user has the mentor role.
func (u *User) IsMentor() bool {
	return u.Role == RoleMentor
}

// Normalize fills defaults once after retrieval so callers can rely on a
// fully populated record.
func (u *User) Normalize() *User {
	if u == nil {
		return nil
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Name = strings.TrimSpace(u.Name)
	u.Career = strings.TrimSpace(u.Career)
	u.Category = u.Category.Normalize()

	if u.Role != RoleMentor {
		u.Rating = RatingSummary{}
		return u
	}
	if u.Rating.Count == 0 {
		u.Rating = SeedRatingSummary()
	}
	if !u.Rating.Tier.Valid() {
		u.Rating.Tier = TierFor(u.Rating.Avg)
	}
	return u
}

// DirectoryFilter narrows a directory search. Empty fields match anything.
type DirectoryFilter struct {
	Role     Role
	Category Category
	Tier     TrustTier
	Limit    int
}

package domain

import (
	"strings"
	"time"
)

// Role is the membership role assigned at registration.
type Role string

const (
	RoleIndoorCoach   Role = "indoor_coach"
	RoleOutdoorCoach  Role = "outdoor_coach"
	RoleIndoorPlayer  Role = "indoor_player"
	RoleOutdoorPlayer Role = "outdoor_player"
)

// Category is the discipline a member plays or coaches in.
type Category string

const (
	CategoryIndoor  Category = "indoor"
	CategoryOutdoor Category = "outdoor"
)

// User is a member's profile record as held in the directory.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	Age          int       `json:"age"`
	Gender       string    `json:"gender"`
	Category     Category  `json:"category"`
	Phone        string    `json:"phone"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeEmail returns the canonical form used as the directory lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

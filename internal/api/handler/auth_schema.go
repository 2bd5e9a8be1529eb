package handler

import (
	"time"

	"github.com/clubroster/membership/internal/core/domain"
)

type registerRequest struct {
	Email        string `json:"email"         validate:"required,email"`
	Password     string `json:"password"      validate:"required,min=6"`
	FullName     string `json:"full_name"     validate:"required,max=120"`
	Role         string `json:"role"          validate:"required,oneof=indoor_coach outdoor_coach indoor_player outdoor_player"`
	Age          int    `json:"age"           validate:"gte=0,lte=120"`
	Gender       string `json:"gender"        validate:"max=32"`
	Category     string `json:"category"      validate:"omitempty,oneof=indoor outdoor"`
	Phone        string `json:"phone"         validate:"max=32"`
	ProfileImage string `json:"profile_image" validate:"omitempty,url"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordResetConfirmRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type loginResponse struct {
	Token       string             `json:"token"`
	ExpiresAt   time.Time          `json:"expires_at"`
	User        *domain.User       `json:"user"`
	Destination domain.Destination `json:"destination"`
}

type sessionResponse struct {
	User        *domain.User       `json:"user"`
	Destination domain.Destination `json:"destination"`
}

type messageResponse struct {
	Message string `json:"message"`
}

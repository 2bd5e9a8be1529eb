package domain

import "time"

// Account is an identity-provider credential record. It is distinct from the
// profile record and shares its ID.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package domain

import "time"

const ProviderGoogle = "google"

// Integration is a stored third-party OAuth grant.
type Integration struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"uniqueIndex:idx_integration_user_provider"`
	Provider     string    `json:"provider" gorm:"uniqueIndex:idx_integration_user_provider"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

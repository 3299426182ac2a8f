package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an account. Passwords are stored as bcrypt hashes only; OAuth
// accounts have no password at all.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"size:255;index" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Provider     string         `gorm:"size:32;not null;default:local;index:idx_users_provider" json:"provider"`
	ProviderID   string         `gorm:"size:255;index:idx_users_provider" json:"provider_id,omitempty"`
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	Profile      *Profile       `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

const (
	ProviderLocal  = "local"
	ProviderGitHub = "github"
	ProviderGoogle = "google"
)

// BeforeCreate hook ensures timestamps and provider are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Provider == "" {
		u.Provider = ProviderLocal
	}
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/serene/models"
)

type UserStore struct {
	db *gorm.DB
}

func (s *UserStore) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Profile").First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindByEmail looks up a local account by its lowercased email.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Profile").
		Where("email = ? AND provider = ?", normalizeEmail(email), models.ProviderLocal).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserStore) FindByProvider(ctx context.Context, provider, providerID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Profile").
		Where("provider = ? AND provider_id = ?", provider, providerID).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	return translate(s.db.WithContext(ctx).Omit("Profile").Create(user).Error)
}

// UpdateOAuth refreshes the identity fields an OAuth provider reports on every sign-in.
func (s *UserStore) UpdateOAuth(ctx context.Context, id uint, email, avatarURL string) error {
	updates := map[string]any{"avatar_url": avatarURL}
	if email != "" {
		updates["email"] = normalizeEmail(email)
	}
	return translate(s.db.WithContext(ctx).Model(&models.User{ID: id}).Updates(updates).Error)
}

// EmailTaken reports whether a local account already uses email.
func (s *UserStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND provider = ?", normalizeEmail(email), models.ProviderLocal).
		Count(&count).Error
	return count > 0, translate(err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

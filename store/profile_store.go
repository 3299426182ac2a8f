package store

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/serene/models"
)

type ProfileStore struct {
	db *gorm.DB
}

// ProfileUpdate is a partial write: only non-nil fields are persisted.
type ProfileUpdate struct {
	Username         *string
	Timezone         *string
	TotalXP          *int
	CurrentLevel     *int
	CurrentStreak    *int
	LongestStreak    *int
	LastActivityDate *string
}

func (u ProfileUpdate) columns() map[string]any {
	cols := map[string]any{}
	if u.Username != nil {
		cols["username"] = *u.Username
	}
	if u.Timezone != nil {
		cols["timezone"] = *u.Timezone
	}
	if u.TotalXP != nil {
		cols["total_xp"] = *u.TotalXP
	}
	if u.CurrentLevel != nil {
		cols["current_level"] = *u.CurrentLevel
	}
	if u.CurrentStreak != nil {
		cols["current_streak"] = *u.CurrentStreak
	}
	if u.LongestStreak != nil {
		cols["longest_streak"] = *u.LongestStreak
	}
	if u.LastActivityDate != nil {
		cols["last_activity_date"] = *u.LastActivityDate
	}
	return cols
}

func (s *ProfileStore) Get(ctx context.Context, userID uint) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// GetForUpdate reads the profile with a row lock. It only serializes writers
// when called inside Stores.Transaction; SQLite ignores the lock clause.
func (s *ProfileStore) GetForUpdate(ctx context.Context, userID uint) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *ProfileStore) Create(ctx context.Context, p *models.Profile) error {
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *ProfileStore) Update(ctx context.Context, userID uint, u ProfileUpdate) error {
	cols := u.columns()
	if len(cols) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&models.Profile{}).Where("user_id = ?", userID).Updates(cols)
	return translate(res.Error)
}

// UsernameTaken reports whether another user already owns name, compared
// case-insensitively.
func (s *ProfileStore) UsernameTaken(ctx context.Context, name string, exceptUserID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("LOWER(username) = ? AND user_id <> ?", strings.ToLower(strings.TrimSpace(name)), exceptUserID).
		Count(&count).Error
	return count > 0, translate(err)
}

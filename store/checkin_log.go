package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/serene/gamification"
	"github.com/cppla/serene/models"
)

// CheckinLog holds at most one mood check-in per user per calendar day.
type CheckinLog struct {
	db *gorm.DB
}

func (l *CheckinLog) Find(ctx context.Context, userID uint, day gamification.Day) (*models.DailyCheckin, error) {
	var c models.DailyCheckin
	err := l.db.WithContext(ctx).
		Where("user_id = ? AND checkin_date = ?", userID, day.String()).
		First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Insert returns ErrDuplicate when the user already checked in that day.
func (l *CheckinLog) Insert(ctx context.Context, c *models.DailyCheckin) error {
	return translate(l.db.WithContext(ctx).Create(c).Error)
}

// Range lists check-ins in [from, to], newest first. YYYY-MM-DD strings sort
// chronologically so the comparison happens on the stored text.
func (l *CheckinLog) Range(ctx context.Context, userID uint, from, to gamification.Day) ([]models.DailyCheckin, error) {
	list := make([]models.DailyCheckin, 0)
	err := l.db.WithContext(ctx).
		Where("user_id = ? AND checkin_date >= ? AND checkin_date <= ?", userID, from.String(), to.String()).
		Order("checkin_date DESC").
		Find(&list).Error
	if err != nil {
		return nil, translate(err)
	}
	return list, nil
}

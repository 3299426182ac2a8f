package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/serene/models"
)

// CompletionLog is the append-only history of finished exercises.
type CompletionLog struct {
	db *gorm.DB
}

func (l *CompletionLog) Insert(ctx context.Context, userID, exerciseID uint, xpEarned int, at time.Time) (*models.UserExercise, error) {
	row := &models.UserExercise{
		UserID:      userID,
		ExerciseID:  exerciseID,
		XPEarned:    xpEarned,
		CompletedAt: at.UTC(),
	}
	if err := l.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, translate(err)
	}
	return row, nil
}

// List returns one page of a user's completions, newest first, with the
// exercise attached. Pages start at 1.
func (l *CompletionLog) List(ctx context.Context, userID uint, page, size int) ([]models.UserExercise, int64, error) {
	if page < 1 {
		page = 1
	}
	scope := func() *gorm.DB {
		return l.db.WithContext(ctx).Model(&models.UserExercise{}).Where("user_id = ?", userID)
	}
	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	rows := make([]models.UserExercise, 0)
	err := scope().Preload("Exercise").
		Order("completed_at DESC, id DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&rows).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return rows, total, nil
}

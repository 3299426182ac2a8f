package models

import "time"

// UserExercise records one completion of an exercise. Rows are only ever
// appended; completing the same exercise again adds another row.
type UserExercise struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_user_exercises_user_completed,priority:1" json:"user_id"`
	ExerciseID  uint      `gorm:"not null;index" json:"exercise_id"`
	Exercise    *Exercise `gorm:"foreignKey:ExerciseID" json:"exercise,omitempty"`
	XPEarned    int       `gorm:"column:xp_earned;not null" json:"xp_earned"`
	CompletedAt time.Time `gorm:"not null;index:idx_user_exercises_user_completed,priority:2" json:"completed_at"`
}

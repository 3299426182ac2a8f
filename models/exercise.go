package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Category groups exercises in the catalog.
type Category string

const (
	CategoryBreathing     Category = "Breathing"
	CategoryGratitude     Category = "Gratitude"
	CategoryMeditation    Category = "Meditation"
	CategoryAffirmations  Category = "Affirmations"
	CategoryMindfulness   Category = "Mindfulness"
	CategorySelfAwareness Category = "Self-Awareness"
)

// Categories is the fixed enumeration in display order.
var Categories = []Category{
	CategoryBreathing,
	CategoryGratitude,
	CategoryMeditation,
	CategoryAffirmations,
	CategoryMindfulness,
	CategorySelfAwareness,
}

// ParseCategory matches s case-insensitively against the enumeration.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

var ErrInvalidExercise = errors.New("invalid exercise")

// Exercise is an immutable catalog entry. Content holds the JSON encoding of
// one ExerciseContent variant.
type Exercise struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Slug            string         `gorm:"size:128;not null;uniqueIndex" json:"slug"`
	Title           string         `gorm:"size:128;not null" json:"title"`
	Description     string         `gorm:"size:1024" json:"description"`
	Category        Category       `gorm:"size:32;not null;index" json:"category"`
	Difficulty      int            `gorm:"not null;index" json:"difficulty"`
	XPReward        int            `gorm:"column:xp_reward;not null" json:"xp_reward"`
	DurationMinutes int            `gorm:"not null" json:"duration_minutes"`
	Content         datatypes.JSON `json:"content"`
	CreatedAt       time.Time      `json:"created_at"`
}

// DecodedContent decodes the stored content payload.
func (e *Exercise) DecodedContent() (ExerciseContent, error) {
	return DecodeContent(e.Content)
}

// Validate checks the catalog invariants, including that Content decodes.
func (e *Exercise) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidExercise)
	}
	if _, ok := ParseCategory(string(e.Category)); !ok {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidExercise, e.Category)
	}
	if e.Difficulty < MinDifficulty || e.Difficulty > MaxDifficulty {
		return fmt.Errorf("%w: difficulty %d out of range %d-%d", ErrInvalidExercise, e.Difficulty, MinDifficulty, MaxDifficulty)
	}
	if e.XPReward <= 0 {
		return fmt.Errorf("%w: xp_reward must be positive", ErrInvalidExercise)
	}
	if e.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration_minutes must be positive", ErrInvalidExercise)
	}
	if _, err := e.DecodedContent(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExercise, err)
	}
	return nil
}

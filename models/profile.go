package models

import "time"

// Profile holds the per-user gamification state. It is keyed by the owning
// user and mutated only with values produced by the gamification engine.
type Profile struct {
	UserID           uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username         string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	CurrentLevel     int       `gorm:"not null;default:1" json:"current_level"`
	TotalXP          int       `gorm:"column:total_xp;not null;default:0" json:"total_xp"`
	CurrentStreak    int       `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak    int       `gorm:"not null;default:0" json:"longest_streak"`
	LastActivityDate *string   `gorm:"size:10" json:"last_activity_date"`
	Timezone         string    `gorm:"size:64;not null;default:UTC" json:"timezone"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

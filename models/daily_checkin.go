package models

import "time"

// DailyCheckin is a mood log entry. The unique index allows at most one row
// per user per calendar day.
type DailyCheckin struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_daily_checkins_user_date,priority:1" json:"user_id"`
	CheckinDate string    `gorm:"size:10;not null;uniqueIndex:idx_daily_checkins_user_date,priority:2" json:"checkin_date"`
	MoodRating  int       `gorm:"not null" json:"mood_rating"`
	Note        string    `gorm:"size:2048" json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	MinMoodRating = 1
	MaxMoodRating = 5
)

// Mood is one point on the check-in scale.
type Mood struct {
	Rating int    `json:"rating"`
	Label  string `json:"label"`
}

// MoodScale lists the ratings from best to worst, the order the prompt shows them.
var MoodScale = []Mood{
	{Rating: 5, Label: "Amazing"},
	{Rating: 4, Label: "Good"},
	{Rating: 3, Label: "Okay"},
	{Rating: 2, Label: "Not Great"},
	{Rating: 1, Label: "Struggling"},
}

// ValidMoodRating reports whether r is on the scale.
func ValidMoodRating(r int) bool {
	return r >= MinMoodRating && r <= MaxMoodRating
}

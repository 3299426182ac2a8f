package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cppla/serene/gamification"
	"github.com/cppla/serene/models"
	"github.com/cppla/serene/store"
	"github.com/cppla/serene/utils"
)

// Dashboard is the read model behind the home screen.
type Dashboard struct {
	Profile         *models.Profile            `json:"profile"`
	Progress        gamification.Progress      `json:"progress"`
	Today           string                     `json:"today"`
	DayState        gamification.ActivityState `json:"day_state"`
	EffectiveStreak int                        `json:"effective_streak"`
	LongestStreak   int                        `json:"longest_streak"`
	CheckedInToday  bool                       `json:"checked_in_today"`
	ShowMoodPrompt  bool                       `json:"show_mood_prompt"`
	TodayCheckin    *models.DailyCheckin       `json:"today_checkin,omitempty"`
}

// Dashboard assembles the caller's profile, level progress and today's
// state. Results are cached briefly and dropped on every mutation.
func (s *WellnessService) Dashboard(ctx context.Context, sess Session) (*Dashboard, error) {
	key := dashboardCachePrefix + strconv.FormatUint(uint64(sess.UserID), 10)
	now := sess.now()

	var cached Dashboard
	if utils.CacheGetJSON(key, &cached) && cached.Profile != nil && cached.Today == s.today(cached.Profile, now).String() {
		return &cached, nil
	}

	profile, err := s.stores.Profiles.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	today := s.today(profile, now)
	checkin, err := s.stores.Checkins.Find(ctx, sess.UserID, today)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("look up check-in: %w", err)
	}

	last := lastActivity(profile)
	d := &Dashboard{
		Profile:         profile,
		Progress:        gamification.ProgressFor(profile.TotalXP),
		Today:           today.String(),
		DayState:        gamification.DayState(last, today),
		EffectiveStreak: gamification.EffectiveStreak(last, profile.CurrentStreak, today),
		LongestStreak:   profile.LongestStreak,
		CheckedInToday:  checkin != nil,
		ShowMoodPrompt:  checkin == nil,
		TodayCheckin:    checkin,
	}
	utils.CacheSetJSON(key, d, dashboardCacheTTL)
	return d, nil
}

// ProfileChanges is a partial profile edit; nil fields are left alone.
type ProfileChanges struct {
	Username *string
	Timezone *string
}

// UpdateProfile applies the caller's edits to username and timezone.
func (s *WellnessService) UpdateProfile(ctx context.Context, sess Session, changes ProfileChanges) (*models.Profile, error) {
	var upd store.ProfileUpdate
	if changes.Username != nil {
		name := strings.TrimSpace(*changes.Username)
		if err := ValidateUsername(name); err != nil {
			return nil, err
		}
		taken, err := s.stores.Profiles.UsernameTaken(ctx, name, sess.UserID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
		upd.Username = &name
	}
	if changes.Timezone != nil {
		tz := strings.TrimSpace(*changes.Timezone)
		if _, err := time.LoadLocation(tz); err != nil || tz == "" {
			return nil, validationErrorf("unknown timezone %q", tz)
		}
		upd.Timezone = &tz
	}

	if err := s.stores.Profiles.Update(ctx, sess.UserID, upd); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	s.invalidateUser(sess.UserID)
	profile, err := s.stores.Profiles.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	utils.Logger.Info("profile updated", zap.Uint("user_id", sess.UserID))
	return profile, nil
}

const (
	MinUsernameLength = 2
	MaxUsernameLength = 32
)

// ValidateUsername accepts 2 to 32 letters, digits, '_' or '-'.
func ValidateUsername(name string) error {
	if n := utf8.RuneCountInString(name); n < MinUsernameLength || n > MaxUsernameLength {
		return validationErrorf("username must be %d-%d characters", MinUsernameLength, MaxUsernameLength)
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			continue
		}
		return validationErrorf("username may only contain letters, digits, '_' and '-'")
	}
	return nil
}

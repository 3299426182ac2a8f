package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/cppla/serene/gamification"
	"github.com/cppla/serene/models"
	"github.com/cppla/serene/store"
	"github.com/cppla/serene/utils"
)

const (
	dashboardCachePrefix = "cache:dashboard:"
	dashboardCacheTTL    = 60 * time.Second
)

// WellnessService orchestrates the gamified operations: completing exercises,
// mood check-ins and the dashboard read model.
type WellnessService struct {
	stores     *store.Stores
	defaultLoc *time.Location
}

// NewWellnessService builds the service. An unknown defaultTimezone falls back to UTC.
func NewWellnessService(stores *store.Stores, defaultTimezone string) *WellnessService {
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil || defaultTimezone == "" {
		loc = time.UTC
	}
	return &WellnessService{stores: stores, defaultLoc: loc}
}

// CompletionResult reports what a completed exercise changed.
type CompletionResult struct {
	Exercise      *models.Exercise          `json:"exercise"`
	XPEarned      int                       `json:"xp_earned"`
	PreviousLevel int                       `json:"previous_level"`
	Level         int                       `json:"level"`
	LeveledUp     bool                      `json:"leveled_up"`
	Streak        gamification.StreakResult `json:"streak"`
	Progress      gamification.Progress     `json:"progress"`
	Profile       *models.Profile           `json:"profile"`
}

// CompleteExercise awards the exercise XP, logs the completion and advances
// the daily streak. All writes share one transaction.
func (s *WellnessService) CompleteExercise(ctx context.Context, sess Session, slug string) (*CompletionResult, error) {
	log := utils.Logger.With(zap.Uint("user_id", sess.UserID), zap.String("exercise", slug))
	now := sess.now()

	var result CompletionResult
	err := s.stores.Transaction(ctx, func(tx *store.Stores) error {
		profile, err := tx.Profiles.GetForUpdate(ctx, sess.UserID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		exercise, err := tx.Catalog.GetBySlug(ctx, slug)
		if err != nil {
			return fmt.Errorf("load exercise: %w", err)
		}

		total, oldLevel, newLevel := gamification.AwardXP(profile.TotalXP, exercise.XPReward)
		if _, err := tx.Completions.Insert(ctx, sess.UserID, exercise.ID, exercise.XPReward, now); err != nil {
			return fmt.Errorf("log completion: %w", err)
		}
		if err := tx.Profiles.Update(ctx, sess.UserID, store.ProfileUpdate{TotalXP: &total, CurrentLevel: &newLevel}); err != nil {
			return fmt.Errorf("award xp: %w", err)
		}
		log.Debug("xp awarded", zap.Int("xp", exercise.XPReward), zap.Int("total_xp", total), zap.Int("level", newLevel))

		today := s.today(profile, now)
		checkedIn, err := hasCheckin(ctx, tx, sess.UserID, today)
		if err != nil {
			return err
		}
		streak, err := s.advanceStreak(ctx, tx, profile, today, checkedIn)
		if err != nil {
			return err
		}

		result = CompletionResult{
			Exercise:      exercise,
			XPEarned:      exercise.XPReward,
			PreviousLevel: oldLevel,
			Level:         newLevel,
			LeveledUp:     newLevel > oldLevel,
			Streak:        streak,
			Progress:      gamification.ProgressFor(total),
		}
		return nil
	})
	if err != nil {
		log.Warn("complete exercise failed", zap.Error(err))
		return nil, err
	}
	s.invalidateUser(sess.UserID)

	profile, err := s.stores.Profiles.Get(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("reload profile: %w", err)
	}
	result.Profile = profile
	log.Info("exercise completed",
		zap.Int("xp", result.XPEarned),
		zap.Bool("leveled_up", result.LeveledUp),
		zap.String("streak", string(result.Streak.Kind)),
		zap.Int("current_streak", result.Streak.Current))
	return &result, nil
}

// advanceStreak runs the streak rule for today and persists the outcome when
// the rule reports an update.
func (s *WellnessService) advanceStreak(ctx context.Context, tx *store.Stores, p *models.Profile, today gamification.Day, checkedInToday bool) (gamification.StreakResult, error) {
	res := gamification.NextStreak(gamification.StreakInput{
		Today:          today,
		LastActivity:   lastActivity(p),
		Current:        p.CurrentStreak,
		Longest:        p.LongestStreak,
		CheckedInToday: checkedInToday,
	})
	if !res.Updated {
		return res, nil
	}
	last := res.LastActivity.String()
	err := tx.Profiles.Update(ctx, p.UserID, store.ProfileUpdate{
		CurrentStreak:    &res.Current,
		LongestStreak:    &res.Longest,
		LastActivityDate: &last,
	})
	if err != nil {
		return res, fmt.Errorf("update streak: %w", err)
	}
	return res, nil
}

func hasCheckin(ctx context.Context, tx *store.Stores, userID uint, day gamification.Day) (bool, error) {
	_, err := tx.Checkins.Find(ctx, userID, day)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("look up check-in: %w", err)
	}
}

// location is the zone that defines the profile's calendar day.
func (s *WellnessService) location(p *models.Profile) *time.Location {
	if p != nil && p.Timezone != "" {
		if loc, err := time.LoadLocation(p.Timezone); err == nil {
			return loc
		}
	}
	return s.defaultLoc
}

func (s *WellnessService) today(p *models.Profile, now time.Time) gamification.Day {
	return gamification.DayOf(now, s.location(p))
}

func lastActivity(p *models.Profile) *gamification.Day {
	if p.LastActivityDate == nil || *p.LastActivityDate == "" {
		return nil
	}
	d, err := gamification.ParseDay(*p.LastActivityDate)
	if err != nil {
		utils.Logger.Warn("ignoring malformed last activity date",
			zap.Uint("user_id", p.UserID), zap.String("value", *p.LastActivityDate))
		return nil
	}
	return &d
}

func (s *WellnessService) invalidateUser(userID uint) {
	utils.CacheDelete(dashboardCachePrefix + strconv.FormatUint(uint64(userID), 10))
}

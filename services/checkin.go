package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cppla/serene/models"
	"github.com/cppla/serene/store"
	"github.com/cppla/serene/utils"
)

const (
	MaxNoteLength      = 500
	DefaultHistoryDays = 7
	MaxHistoryDays     = 90
)

// CheckinInput is a mood submission.
type CheckinInput struct {
	MoodRating int
	Note       string
}

// CheckinResult is the stored check-in and the caller's profile.
type CheckinResult struct {
	Checkin *models.DailyCheckin `json:"checkin"`
	Profile *models.Profile      `json:"profile"`
}

// SubmitCheckin records today's mood. A second submission on the same
// calendar day fails with ErrAlreadyCheckedIn. The streak is left alone; an
// exercise completed later today sees the check-in and skips its advance.
func (s *WellnessService) SubmitCheckin(ctx context.Context, sess Session, in CheckinInput) (*CheckinResult, error) {
	if !models.ValidMoodRating(in.MoodRating) {
		return nil, validationErrorf("mood rating must be between %d and %d", models.MinMoodRating, models.MaxMoodRating)
	}
	note := utils.SanitizeText(in.Note)
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return nil, validationErrorf("note must be at most %d characters", MaxNoteLength)
	}
	now := sess.now()

	var result CheckinResult
	err := s.stores.Transaction(ctx, func(tx *store.Stores) error {
		profile, err := tx.Profiles.Get(ctx, sess.UserID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		today := s.today(profile, now)
		exists, err := hasCheckin(ctx, tx, sess.UserID, today)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyCheckedIn
		}

		checkin := &models.DailyCheckin{
			UserID:      sess.UserID,
			CheckinDate: today.String(),
			MoodRating:  in.MoodRating,
			Note:        note,
		}
		if err := tx.Checkins.Insert(ctx, checkin); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return ErrAlreadyCheckedIn
			}
			return fmt.Errorf("insert check-in: %w", err)
		}
		result = CheckinResult{Checkin: checkin}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateUser(sess.UserID)

	profile, err := s.stores.Profiles.Get(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("reload profile: %w", err)
	}
	result.Profile = profile
	utils.Logger.Info("mood check-in recorded",
		zap.Uint("user_id", sess.UserID),
		zap.String("date", result.Checkin.CheckinDate),
		zap.Int("mood", in.MoodRating))
	return &result, nil
}

// TodayCheckin returns the caller's check-in for today or ErrNotFound.
func (s *WellnessService) TodayCheckin(ctx context.Context, sess Session) (*models.DailyCheckin, error) {
	profile, err := s.stores.Profiles.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return s.stores.Checkins.Find(ctx, sess.UserID, s.today(profile, sess.now()))
}

// CheckinHistory lists the caller's check-ins over the last days calendar
// days including today, newest first.
func (s *WellnessService) CheckinHistory(ctx context.Context, sess Session, days int) ([]models.DailyCheckin, error) {
	if days == 0 {
		days = DefaultHistoryDays
	}
	if days < 1 || days > MaxHistoryDays {
		return nil, validationErrorf("days must be between 1 and %d", MaxHistoryDays)
	}
	profile, err := s.stores.Profiles.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	today := s.today(profile, sess.now())
	return s.stores.Checkins.Range(ctx, sess.UserID, today.AddDays(-(days - 1)), today)
}

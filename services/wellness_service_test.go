package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/serene/gamification"
	"github.com/cppla/serene/store"
)

func TestCompleteExerciseLevelsUp(t *testing.T) {
	stores := openStores(t)
	svc := NewWellnessService(stores, "UTC")
	sess := at(t, newUser(t, stores, "leveler", "UTC"), "2026-03-10T12:00:00Z")
	setProfile(t, stores, sess.UserID, store.ProfileUpdate{TotalXP: ptr(95)})

	res, err := svc.CompleteExercise(context.Background(), sess, "box-breathing")
	require.NoError(t, err)

	assert.Equal(t, 10, res.XPEarned)
	assert.Equal(t, 1, res.PreviousLevel)
	assert.Equal(t, 2, res.Level)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 105, res.Profile.TotalXP)
	assert.Equal(t, 2, res.Profile.CurrentLevel)
	assert.Equal(t, 5, res.Progress.XPIntoLevel)

	completions, total, err := svc.CompletionHistory(context.Background(), sess, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, completions, 1)
	assert.Equal(t, 10, completions[0].XPEarned)
	require.NotNil(t, completions[0].Exercise)
	assert.Equal(t, "box-breathing", completions[0].Exercise.Slug)
}

func TestCompleteExerciseStreakRules(t *testing.T) {
	tests := []struct {
		name        string
		last        *string
		current     int
		longest     int
		wantKind    gamification.StreakKind
		wantCurrent int
		wantLongest int
	}{
		{name: "first activity", wantKind: gamification.StreakFirst, wantCurrent: 1, wantLongest: 1},
		{name: "continues from yesterday", last: ptr("2026-03-09"), current: 5, longest: 5, wantKind: gamification.StreakContinued, wantCurrent: 6, wantLongest: 6},
		{name: "resets after a gap", last: ptr("2026-02-28"), current: 7, longest: 7, wantKind: gamification.StreakReset, wantCurrent: 1, wantLongest: 7},
		{name: "same day keeps the streak", last: ptr("2026-03-10"), current: 3, longest: 9, wantKind: gamification.StreakSameDay, wantCurrent: 3, wantLongest: 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stores := openStores(t)
			svc := NewWellnessService(stores, "UTC")
			sess := at(t, newUser(t, stores, "streaker", "UTC"), "2026-03-10T08:00:00Z")
			setProfile(t, stores, sess.UserID, store.ProfileUpdate{
				CurrentStreak:    &tt.current,
				LongestStreak:    &tt.longest,
				LastActivityDate: tt.last,
			})

			res, err := svc.CompleteExercise(context.Background(), sess, "three-good-things")
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, res.Streak.Kind)
			assert.Equal(t, tt.wantCurrent, res.Profile.CurrentStreak)
			assert.Equal(t, tt.wantLongest, res.Profile.LongestStreak)
			require.NotNil(t, res.Profile.LastActivityDate)
			assert.Equal(t, "2026-03-10", *res.Profile.LastActivityDate)
		})
	}
}

func TestCompleteExerciseUnknownSlug(t *testing.T) {
	stores := openStores(t)
	svc := NewWellnessService(stores, "UTC")
	sess := newUser(t, stores, "nobody", "UTC")

	_, err := svc.CompleteExercise(context.Background(), sess, "juggling")
	require.ErrorIs(t, err, ErrNotFound)

	p, err := stores.Profiles.Get(context.Background(), sess.UserID)
	require.NoError(t, err)
	assert.Zero(t, p.TotalXP)
	assert.Nil(t, p.LastActivityDate)
}

func TestSubmitCheckinOncePerDay(t *testing.T) {
	stores := openStores(t)
	svc := NewWellnessService(stores, "UTC")
	sess := at(t, newUser(t, stores, "moody", "UTC"), "2026-03-10T07:00:00Z")
	ctx := context.Background()

	res, err := svc.SubmitCheckin(ctx, sess, CheckinInput{MoodRating: 4, Note: "<b>calm</b> morning"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", res.Checkin.CheckinDate)
	assert.Equal(t, "calm morning", res.Checkin.Note)
	assert.Equal(t, 0, res.Profile.CurrentStreak)
	assert.Nil(t, res.Profile.LastActivityDate)

	later := at(t, sess, "2026-03-10T21:00:00Z")
	_, err = svc.SubmitCheckin(ctx, later, CheckinInput{MoodRating: 2})
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)

	history, err := svc.CheckinHistory(ctx, later, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 4, history[0].MoodRating)
}

func TestSubmitCheckinValidation(t *testing.T) {
	stores := openStores(t)
	svc := NewWellnessService(stores, "UTC")
	sess := newUser(t, stores, "picky", "UTC")
	ctx := context.Background()

	_, err := svc.SubmitCheckin(ctx, sess, CheckinInput{MoodRating: 0})
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.SubmitCheckin(ctx, sess, CheckinInput{MoodRating: 6})
	require.ErrorIs(t, err, ErrValidation)

	long := make([]byte, MaxNoteLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.SubmitCheckin(ctx, sess, CheckinInput{MoodRating: 3, Note: string(long)})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CheckinHistory(ctx, sess, MaxHistoryDays+1)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCheckinThenExerciseKeepsStreak(t *testing.T) {
	stores := openStores(t)
	svc := NewWellnessService(stores, "UTC")
	sess := at(t, newUser(t, stores, "steady", "UTC"), "2026-03-10T09:00:00Z")
	setProfile(t, stores, sess.UserID, store.ProfileUpdate{
		CurrentStreak:    ptr(2),
		LongestStreak:    ptr(2),
		LastActivityDate: ptr("2026-03-09"),
	})
	ctx := context.Background()

	checkin, err := svc.SubmitCheckin(ctx, sess, CheckinInput{MoodRating: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, checkin.Profile.CurrentStreak)
	require.NotNil(t, checkin.Profile.LastActivityDate)
	assert.Equal(t, "2026-03-09", *checkin.Profile.LastActivityDate)

	done, err := svc.CompleteExercise(ctx, sess, "box-breathing")
	require.NoError(t, err)
	assert.Equal(t, gamification.StreakSkipped, done.Streak.Kind)
	assert.False(t, done.Streak.Updated)
	assert.Equal(t, 2, done.Profile.CurrentStreak)
	require.NotNil(t, done.Profile.LastActivityDate)
	assert.Equal(t, "2026-03-09", *done.Profile.LastActivityDate)
	assert.Equal(t, 10, done.Profile.TotalXP)
}

func TestCheckinAloneDoesNotKeepStreakAlive(t *testing.T) {
	stores := openStores(t)
	svc := NewWellnessService(stores, "UTC")
	sess := at(t, newUser(t, stores, "gappy", "UTC"), "2026-03-09T09:00:00Z")
	setProfile(t, stores, sess.UserID, store.ProfileUpdate{
		CurrentStreak:    ptr(1),
		LongestStreak:    ptr(1),
		LastActivityDate: ptr("2026-03-08"),
	})
	ctx := context.Background()

	checkin, err := svc.SubmitCheckin(ctx, sess, CheckinInput{MoodRating: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, checkin.Profile.CurrentStreak)
	require.NotNil(t, checkin.Profile.LastActivityDate)
	assert.Equal(t, "2026-03-08", *checkin.Profile.LastActivityDate)

	done, err := svc.CompleteExercise(ctx, at(t, sess, "2026-03-10T09:00:00Z"), "box-breathing")
	require.NoError(t, err)
	assert.Equal(t, gamification.StreakReset, done.Streak.Kind)
	assert.Equal(t, 1, done.Profile.CurrentStreak)
	assert.Equal(t, 1, done.Profile.LongestStreak)
	require.NotNil(t, done.Profile.LastActivityDate)
	assert.Equal(t, "2026-03-10", *done.Profile.LastActivityDate)
}

func TestExerciseThenCheckinKeepsStreak(t *testing.T) {
	stores := openStores(t)
	svc := NewWellnessService(stores, "UTC")
	sess := at(t, newUser(t, stores, "early", "UTC"), "2026-03-10T09:00:00Z")
	ctx := context.Background()

	done, err := svc.CompleteExercise(ctx, sess, "box-breathing")
	require.NoError(t, err)
	assert.Equal(t, 1, done.Profile.CurrentStreak)

	checkin, err := svc.SubmitCheckin(ctx, sess, CheckinInput{MoodRating: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, checkin.Profile.CurrentStreak)
	require.NotNil(t, checkin.Profile.LastActivityDate)
	assert.Equal(t, "2026-03-10", *checkin.Profile.LastActivityDate)
}

func TestTodayFollowsProfileTimezone(t *testing.T) {
	stores := openStores(t)
	svc := NewWellnessService(stores, "UTC")
	// 20:00 UTC on Jan 1 is already 09:00 on Jan 2 in Auckland.
	sess := at(t, newUser(t, stores, "kiwi", "Pacific/Auckland"), "2026-01-01T20:00:00Z")

	res, err := svc.SubmitCheckin(context.Background(), sess, CheckinInput{MoodRating: 4})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02", res.Checkin.CheckinDate)

	today, err := svc.TodayCheckin(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, res.Checkin.ID, today.ID)
}

func TestDashboardReflectsToday(t *testing.T) {
	useMiniredis(t)
	stores := openStores(t)
	svc := NewWellnessService(stores, "UTC")
	sess := at(t, newUser(t, stores, "dash", "UTC"), "2026-03-10T10:00:00Z")
	setProfile(t, stores, sess.UserID, store.ProfileUpdate{
		CurrentStreak:    ptr(4),
		LongestStreak:    ptr(6),
		LastActivityDate: ptr("2026-03-05"),
		TotalXP:          ptr(240),
		CurrentLevel:     ptr(3),
	})
	ctx := context.Background()

	d, err := svc.Dashboard(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", d.Today)
	assert.Equal(t, gamification.NoActivityToday, d.DayState)
	assert.Equal(t, 0, d.EffectiveStreak)
	assert.Equal(t, 6, d.LongestStreak)
	assert.Equal(t, 3, d.Progress.Level)
	assert.Equal(t, 40, d.Progress.XPIntoLevel)
	assert.True(t, d.ShowMoodPrompt)
	assert.False(t, d.CheckedInToday)

	_, err = svc.SubmitCheckin(ctx, sess, CheckinInput{MoodRating: 4})
	require.NoError(t, err)

	d, err = svc.Dashboard(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, gamification.NoActivityToday, d.DayState)
	assert.Equal(t, 0, d.EffectiveStreak)
	assert.True(t, d.CheckedInToday)
	assert.False(t, d.ShowMoodPrompt)
	require.NotNil(t, d.TodayCheckin)
	assert.Equal(t, 4, d.TodayCheckin.MoodRating)
}

func TestUpdateProfile(t *testing.T) {
	stores := openStores(t)
	svc := NewWellnessService(stores, "UTC")
	sess := newUser(t, stores, "renamer", "UTC")
	newUser(t, stores, "taken", "UTC")
	ctx := context.Background()

	p, err := svc.UpdateProfile(ctx, sess, ProfileChanges{Username: ptr("calm_river"), Timezone: ptr("Europe/Berlin")})
	require.NoError(t, err)
	assert.Equal(t, "calm_river", p.Username)
	assert.Equal(t, "Europe/Berlin", p.Timezone)

	_, err = svc.UpdateProfile(ctx, sess, ProfileChanges{Username: ptr("TAKEN")})
	require.ErrorIs(t, err, ErrUsernameTaken)
	_, err = svc.UpdateProfile(ctx, sess, ProfileChanges{Username: ptr("x")})
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpdateProfile(ctx, sess, ProfileChanges{Username: ptr("no spaces")})
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpdateProfile(ctx, sess, ProfileChanges{Timezone: ptr("Mars/Olympus")})
	require.ErrorIs(t, err, ErrValidation)
}

func TestListExercises(t *testing.T) {
	useMiniredis(t)
	stores := openStores(t)
	svc := NewWellnessService(stores, "UTC")
	ctx := context.Background()

	all, err := svc.ListExercises(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 6)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Difficulty, all[i].Difficulty)
	}

	breathing, err := svc.ListExercises(ctx, "breathing")
	require.NoError(t, err)
	require.Len(t, breathing, 1)
	assert.Equal(t, "box-breathing", breathing[0].Slug)

	cached, err := svc.ListExercises(ctx, "Breathing")
	require.NoError(t, err)
	assert.Equal(t, breathing[0].ID, cached[0].ID)

	_, err = svc.ListExercises(ctx, "juggling")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetExercise(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.CompletionHistory(ctx, Session{UserID: 1}, 1, 0)
	require.ErrorIs(t, err, ErrValidation)
}

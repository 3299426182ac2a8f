package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeContentVariants(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want ExerciseContent
	}{
		{
			name: "breathing",
			raw:  `{"type":"breathing","instructions":["Inhale 4","Hold 7","Exhale 8"],"rounds":4}`,
			want: &BreathingContent{Instructions: []string{"Inhale 4", "Hold 7", "Exhale 8"}, Rounds: 4},
		},
		{
			name: "reflection defaults fields",
			raw:  `{"type":"reflection","prompt":"What went well today?"}`,
			want: &ReflectionContent{Prompt: "What went well today?", Fields: 3},
		},
		{
			name: "guided",
			raw:  `{"type":"guided","instructions":["Close your eyes"],"duration":5}`,
			want: &GuidedContent{Instructions: []string{"Close your eyes"}, Duration: 5},
		},
		{
			name: "affirmations",
			raw:  `{"type":"affirmations","statements":["I am enough"]}`,
			want: &AffirmationsContent{Statements: []string{"I am enough"}},
		},
		{
			name: "observation",
			raw:  `{"type":"observation","instructions":["Name five things you can see"]}`,
			want: &ObservationContent{Instructions: []string{"Name five things you can see"}},
		},
		{
			name: "checkin",
			raw:  `{"type":"checkin","questions":["How is your body feeling?"]}`,
			want: &CheckinContent{Questions: []string{"How is your body feeling?"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeContent([]byte(tc.raw))
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("decoded content mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeContentRejectsUnknownType(t *testing.T) {
	_, err := DecodeContent([]byte(`{"type":"journaling","prompt":"x"}`))
	assert.True(t, errors.Is(err, ErrUnknownContentType))

	_, err = DecodeContent([]byte(`{"prompt":"x"}`))
	assert.True(t, errors.Is(err, ErrUnknownContentType))
}

func TestDecodeContentRejectsMissingFields(t *testing.T) {
	bad := []string{
		`{"type":"breathing","instructions":["in","out"]}`,
		`{"type":"breathing","rounds":3}`,
		`{"type":"reflection","prompt":"  "}`,
		`{"type":"affirmations","statements":[]}`,
		`{"type":"observation","instructions":["look",""]}`,
		`{"type":"checkin"}`,
		`not json`,
		``,
	}
	for _, raw := range bad {
		_, err := DecodeContent([]byte(raw))
		assert.Truef(t, errors.Is(err, ErrInvalidContent), "payload %q: %v", raw, err)
	}
}

func TestEncodeContentAddsTag(t *testing.T) {
	raw, err := EncodeContent(&AffirmationsContent{Statements: []string{"I am calm"}})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "affirmations", fields["type"])

	back, err := DecodeContent(raw)
	require.NoError(t, err)
	assert.Equal(t, ContentAffirmations, back.Type())
}

func TestExerciseValidate(t *testing.T) {
	content, err := EncodeContent(&CheckinContent{Questions: []string{"What do you need?"}})
	require.NoError(t, err)
	ex := Exercise{
		Title:           "Body Check-in",
		Category:        CategorySelfAwareness,
		Difficulty:      2,
		XPReward:        15,
		DurationMinutes: 5,
		Content:         content,
	}
	require.NoError(t, ex.Validate())

	broken := ex
	broken.Difficulty = 6
	assert.ErrorIs(t, broken.Validate(), ErrInvalidExercise)

	broken = ex
	broken.XPReward = 0
	assert.ErrorIs(t, broken.Validate(), ErrInvalidExercise)

	broken = ex
	broken.Category = "Yoga"
	assert.ErrorIs(t, broken.Validate(), ErrInvalidExercise)

	broken = ex
	broken.Content = []byte(`{"type":"dance"}`)
	assert.ErrorIs(t, broken.Validate(), ErrInvalidExercise)
}

func TestParseCategoryAndMood(t *testing.T) {
	c, ok := ParseCategory("self-awareness")
	assert.True(t, ok)
	assert.Equal(t, CategorySelfAwareness, c)
	_, ok = ParseCategory("cardio")
	assert.False(t, ok)

	assert.True(t, ValidMoodRating(1))
	assert.True(t, ValidMoodRating(5))
	assert.False(t, ValidMoodRating(0))
	assert.False(t, ValidMoodRating(6))
	assert.Len(t, MoodScale, 5)
}

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ContentType tags the variant of an exercise content payload.
type ContentType string

const (
	ContentBreathing    ContentType = "breathing"
	ContentReflection   ContentType = "reflection"
	ContentGuided       ContentType = "guided"
	ContentAffirmations ContentType = "affirmations"
	ContentObservation  ContentType = "observation"
	ContentCheckin      ContentType = "checkin"
)

var (
	ErrUnknownContentType = errors.New("unknown exercise content type")
	ErrInvalidContent     = errors.New("invalid exercise content")
)

// ExerciseContent is implemented only by the variant types in this file.
type ExerciseContent interface {
	Type() ContentType
	validate() error
}

// BreathingContent is a paced breathing pattern repeated Rounds times.
type BreathingContent struct {
	Instructions []string `json:"instructions" yaml:"instructions"`
	Rounds       int      `json:"rounds" yaml:"rounds"`
}

// ReflectionContent asks the user to write Fields answers to Prompt.
type ReflectionContent struct {
	Prompt string `json:"prompt" yaml:"prompt"`
	Fields int    `json:"fields" yaml:"fields"`
}

// GuidedContent is a guided meditation script.
type GuidedContent struct {
	Instructions []string `json:"instructions" yaml:"instructions"`
	Duration     int      `json:"duration,omitempty" yaml:"duration"`
}

type AffirmationsContent struct {
	Statements []string `json:"statements" yaml:"statements"`
}

type ObservationContent struct {
	Instructions []string `json:"instructions" yaml:"instructions"`
}

// CheckinContent is a self-awareness questionnaire.
type CheckinContent struct {
	Questions []string `json:"questions" yaml:"questions"`
}

const defaultReflectionFields = 3

func (*BreathingContent) Type() ContentType    { return ContentBreathing }
func (*ReflectionContent) Type() ContentType   { return ContentReflection }
func (*GuidedContent) Type() ContentType       { return ContentGuided }
func (*AffirmationsContent) Type() ContentType { return ContentAffirmations }
func (*ObservationContent) Type() ContentType  { return ContentObservation }
func (*CheckinContent) Type() ContentType      { return ContentCheckin }

func (c *BreathingContent) validate() error {
	if err := requireLines("instructions", c.Instructions); err != nil {
		return err
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("%w: breathing rounds must be positive", ErrInvalidContent)
	}
	return nil
}

func (c *ReflectionContent) validate() error {
	if strings.TrimSpace(c.Prompt) == "" {
		return fmt.Errorf("%w: reflection prompt is required", ErrInvalidContent)
	}
	if c.Fields < 0 {
		return fmt.Errorf("%w: reflection fields must not be negative", ErrInvalidContent)
	}
	if c.Fields == 0 {
		c.Fields = defaultReflectionFields
	}
	return nil
}

func (c *GuidedContent) validate() error {
	if c.Duration < 0 {
		return fmt.Errorf("%w: guided duration must not be negative", ErrInvalidContent)
	}
	return requireLines("instructions", c.Instructions)
}

func (c *AffirmationsContent) validate() error { return requireLines("statements", c.Statements) }
func (c *ObservationContent) validate() error  { return requireLines("instructions", c.Instructions) }
func (c *CheckinContent) validate() error      { return requireLines("questions", c.Questions) }

func requireLines(field string, lines []string) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: %s is required", ErrInvalidContent, field)
	}
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			return fmt.Errorf("%w: %s[%d] is empty", ErrInvalidContent, field, i)
		}
	}
	return nil
}

// NewContent returns an empty variant for t.
func NewContent(t ContentType) (ExerciseContent, error) {
	switch t {
	case ContentBreathing:
		return &BreathingContent{}, nil
	case ContentReflection:
		return &ReflectionContent{}, nil
	case ContentGuided:
		return &GuidedContent{}, nil
	case ContentAffirmations:
		return &AffirmationsContent{}, nil
	case ContentObservation:
		return &ObservationContent{}, nil
	case ContentCheckin:
		return &CheckinContent{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, t)
	}
}

// DecodeContent decodes a tagged JSON payload into its variant and validates it.
func DecodeContent(raw []byte) (ExerciseContent, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidContent)
	}
	var head struct {
		Type ContentType `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	c, err := NewContent(head.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// EncodeContent validates c and renders it as a tagged JSON object.
func EncodeContent(c ExerciseContent) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil content", ErrInvalidContent)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	tag, _ := json.Marshal(c.Type())
	fields["type"] = tag
	return json.Marshal(fields)
}

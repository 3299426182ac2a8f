package store

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/cppla/serene/models"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type seedFile struct {
	Exercises []seedExercise `yaml:"exercises"`
}

type seedExercise struct {
	Slug            string    `yaml:"slug"`
	Title           string    `yaml:"title"`
	Description     string    `yaml:"description"`
	Category        string    `yaml:"category"`
	Difficulty      int       `yaml:"difficulty"`
	XPReward        int       `yaml:"xp_reward"`
	DurationMinutes int       `yaml:"duration_minutes"`
	Content         yaml.Node `yaml:"content"`
}

// LoadCatalog reads exercise definitions from path, or from the embedded
// catalog when path is empty.
func LoadCatalog(path string) ([]models.Exercise, error) {
	if path == "" {
		return ParseCatalog(bytes.NewReader(defaultCatalog))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return ParseCatalog(f)
}

// ParseCatalog decodes a YAML catalog. Every entry is validated, including
// its content variant.
func ParseCatalog(r io.Reader) ([]models.Exercise, error) {
	var file seedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	out := make([]models.Exercise, 0, len(file.Exercises))
	seen := map[string]bool{}
	for i, se := range file.Exercises {
		ex, err := se.toModel()
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", i, se.Title, err)
		}
		if seen[ex.Slug] {
			return nil, fmt.Errorf("catalog entry %d: duplicate slug %q", i, ex.Slug)
		}
		seen[ex.Slug] = true
		out = append(out, ex)
	}
	return out, nil
}

func (se seedExercise) toModel() (models.Exercise, error) {
	category, ok := models.ParseCategory(se.Category)
	if !ok {
		return models.Exercise{}, fmt.Errorf("%w: unknown category %q", models.ErrInvalidExercise, se.Category)
	}
	var head struct {
		Type models.ContentType `yaml:"type"`
	}
	if err := se.Content.Decode(&head); err != nil {
		return models.Exercise{}, fmt.Errorf("%w: %v", models.ErrInvalidContent, err)
	}
	content, err := models.NewContent(head.Type)
	if err != nil {
		return models.Exercise{}, err
	}
	if err := se.Content.Decode(content); err != nil {
		return models.Exercise{}, fmt.Errorf("%w: %v", models.ErrInvalidContent, err)
	}
	raw, err := models.EncodeContent(content)
	if err != nil {
		return models.Exercise{}, err
	}

	s := se.Slug
	if s == "" {
		s = slug.Make(se.Title)
	}
	ex := models.Exercise{
		Slug:            s,
		Title:           se.Title,
		Description:     se.Description,
		Category:        category,
		Difficulty:      se.Difficulty,
		XPReward:        se.XPReward,
		DurationMinutes: se.DurationMinutes,
		Content:         raw,
	}
	if err := ex.Validate(); err != nil {
		return models.Exercise{}, err
	}
	return ex, nil
}

// Seed upserts every exercise into the catalog and returns how many were written.
func Seed(ctx context.Context, catalog *Catalog, exercises []models.Exercise) (int, error) {
	for i := range exercises {
		if err := catalog.Upsert(ctx, &exercises[i]); err != nil {
			return i, fmt.Errorf("seed %s: %w", exercises[i].Slug, err)
		}
	}
	return len(exercises), nil
}

package services

import (
	"context"
	"time"

	"github.com/cppla/serene/models"
	"github.com/cppla/serene/utils"
)

const (
	catalogCachePrefix = "cache:catalog:"
	catalogCacheTTL    = time.Hour
)

func catalogCacheKey(c models.Category) string {
	if c == "" {
		return catalogCachePrefix + "all"
	}
	return catalogCachePrefix + string(c)
}

// ListExercises returns the catalog ordered by difficulty, optionally limited
// to one category.
func (s *WellnessService) ListExercises(ctx context.Context, category string) ([]models.Exercise, error) {
	var c models.Category
	if category != "" {
		parsed, ok := models.ParseCategory(category)
		if !ok {
			return nil, validationErrorf("unknown category %q", category)
		}
		c = parsed
	}

	var cached []models.Exercise
	if utils.CacheGetJSON(catalogCacheKey(c), &cached) {
		return cached, nil
	}
	list, err := s.stores.Catalog.List(ctx, c)
	if err != nil {
		return nil, err
	}
	utils.CacheSetJSON(catalogCacheKey(c), list, catalogCacheTTL)
	return list, nil
}

func (s *WellnessService) GetExercise(ctx context.Context, slug string) (*models.Exercise, error) {
	return s.stores.Catalog.GetBySlug(ctx, slug)
}

// WarmCatalog refreshes the cached catalog listings.
func (s *WellnessService) WarmCatalog(ctx context.Context) error {
	keys := append([]models.Category{""}, models.Categories...)
	for _, c := range keys {
		list, err := s.stores.Catalog.List(ctx, c)
		if err != nil {
			return err
		}
		utils.CacheSetJSON(catalogCacheKey(c), list, catalogCacheTTL)
	}
	return nil
}

// InvalidateCatalog drops every cached listing; seeding calls it.
func InvalidateCatalog() {
	utils.InvalidateByPrefix(catalogCachePrefix)
}

// CompletionHistory pages through the caller's completed exercises, newest first.
func (s *WellnessService) CompletionHistory(ctx context.Context, sess Session, page, pageSize int) ([]models.UserExercise, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > utils.MaxPageSize {
		return nil, 0, validationErrorf("page size must be between 1 and %d", utils.MaxPageSize)
	}
	return s.stores.Completions.List(ctx, sess.UserID, page, pageSize)
}

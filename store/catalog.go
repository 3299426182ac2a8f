package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/serene/models"
)

// Catalog is the read-only exercise catalog. Upsert exists for seeding only.
type Catalog struct {
	db *gorm.DB
}

// List returns exercises ordered by difficulty then id. An empty category
// lists the whole catalog.
func (c *Catalog) List(ctx context.Context, category models.Category) ([]models.Exercise, error) {
	q := c.db.WithContext(ctx).Model(&models.Exercise{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	list := make([]models.Exercise, 0)
	if err := q.Order("difficulty ASC, id ASC").Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (c *Catalog) GetBySlug(ctx context.Context, slug string) (*models.Exercise, error) {
	var ex models.Exercise
	if err := c.db.WithContext(ctx).Where("slug = ?", slug).First(&ex).Error; err != nil {
		return nil, translate(err)
	}
	return &ex, nil
}

// Upsert inserts ex or overwrites the definition stored under the same slug.
func (c *Catalog) Upsert(ctx context.Context, ex *models.Exercise) error {
	if err := ex.Validate(); err != nil {
		return err
	}
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "category", "difficulty", "xp_reward", "duration_minutes", "content",
		}),
	}).Create(ex).Error
	return translate(err)
}

func (c *Catalog) Count(ctx context.Context) (int64, error) {
	var n int64
	err := c.db.WithContext(ctx).Model(&models.Exercise{}).Count(&n).Error
	return n, translate(err)
}

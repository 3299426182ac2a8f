package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/serene/models"
)

// Stores bundles the record stores that share one database handle. Inside
// Transaction every store is bound to the same transaction.
type Stores struct {
	db *gorm.DB

	Users       *UserStore
	Profiles    *ProfileStore
	Catalog     *Catalog
	Completions *CompletionLog
	Checkins    *CheckinLog
}

func New(db *gorm.DB) *Stores {
	return &Stores{
		db:          db,
		Users:       &UserStore{db: db},
		Profiles:    &ProfileStore{db: db},
		Catalog:     &Catalog{db: db},
		Completions: &CompletionLog{db: db},
		Checkins:    &CheckinLog{db: db},
	}
}

// DB exposes the underlying handle for health checks and migrations.
func (s *Stores) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with stores bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Stores) Transaction(ctx context.Context, fn func(tx *Stores) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Ping checks the database connection.
func (s *Stores) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate creates or updates the schema of every model.
func Migrate(ctx context.Context, db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.WithContext(ctx).AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	return nil
}

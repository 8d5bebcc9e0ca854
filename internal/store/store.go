// Package store persists measured audio durations and render history.
// SQLite is the default; Postgres is used when a shared cache is configured.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DurationEntry caches the measured length of one audio file. Size and
// ModUnix detect files that changed since they were measured.
type DurationEntry struct {
	gorm.Model
	Path    string `gorm:"size:1024;uniqueIndex"`
	Size    int64
	ModUnix int64
	Millis  int64
}

// RenderRun is one finished or failed render.
type RenderRun struct {
	gorm.Model
	Storyboard   string `gorm:"size:1024"`
	Output       string `gorm:"size:1024"`
	Frames       int
	Width        int
	Height       int
	FPS          int
	Workers      int
	Encoder      string `gorm:"size:64"`
	ElapsedMs    int64
	FailedAssets int
	Host         string `gorm:"size:255"`
	Status       string `gorm:"size:32"`
	Error        string `gorm:"size:2000"`
}

var models = []any{&DurationEntry{}, &RenderRun{}}

// Store wraps the gorm handle.
type Store struct {
	db *gorm.DB
}

// Open connects to driver ("sqlite" or "postgres") and migrates the schema.
// An empty sqlite dsn opens a shared in-memory database.
func Open(driver, dsn string) (*Store, error) {
	cfg := &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}
	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "sqlite", "":
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		cfg.PrepareStmt = true
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
	case "postgres":
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("migrate %s store: %w", driver, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Duration returns a cached duration for path when size and modification
// time still match.
func (s *Store) Duration(ctx context.Context, path string, size, modUnix int64) (time.Duration, bool, error) {
	var e DurationEntry
	err := s.db.WithContext(ctx).Where("path = ?", path).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if e.Size != size || e.ModUnix != modUnix {
		return 0, false, nil
	}
	return time.Duration(e.Millis) * time.Millisecond, true, nil
}

// PutDuration upserts the measured duration of path.
func (s *Store) PutDuration(ctx context.Context, path string, size, modUnix int64, d time.Duration) error {
	e := DurationEntry{Path: path, Size: size, ModUnix: modUnix, Millis: d.Milliseconds()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"size", "mod_unix", "millis", "updated_at"}),
	}).Create(&e).Error
}

// RecordRun stores r and fills in its ID.
func (s *Store) RecordRun(ctx context.Context, r *RenderRun) error {
	return s.db.WithContext(ctx).Create(r).Error
}

// Runs returns the most recent runs first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RenderRun, error) {
	var runs []RenderRun
	q := s.db.WithContext(ctx).Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

package astro

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coopcontrol/internal/metrics"
	"coopcontrol/internal/storage"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Records never change once written, so cached entries only expire to bound
// memory.
const (
	cacheTTL     = 24 * time.Hour
	cacheCleanup = time.Hour
)

// Store persists astronomical records, one per UTC date
type Store struct {
	db       *gorm.DB
	location *time.Location
	cache    *cache.Cache
	logger   *zap.Logger

	// afterLookup runs between the existence check and the insert
	afterLookup func()
}

// NewStore creates a store. loc is the display timezone used by Render.
func NewStore(db *gorm.DB, loc *time.Location, logger *zap.Logger) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{
		db:       db,
		location: loc,
		cache:    cache.New(cacheTTL, cacheCleanup),
		logger:   logger,
	}
}

// Migrate creates the astronomical table
func (s *Store) Migrate() error {
	return storage.Migrate(s.db, &Record{})
}

// Location returns the display timezone
func (s *Store) Location() *time.Location {
	return s.location
}

// Upsert stores raw under the UTC date of its sunrise and returns the row id.
// An existing row for that date is returned untouched.
func (s *Store) Upsert(ctx context.Context, raw *RawResult) (uint, error) {
	id, _, err := s.upsert(ctx, raw)
	return id, err
}

func (s *Store) upsert(ctx context.Context, raw *RawResult) (uint, string, error) {
	rec, err := normalize(raw)
	if err != nil {
		return 0, "", err
	}

	s.logger.Debug("Normalized astronomical data",
		zap.String("date", rec.Date),
		zap.Int64("sunrise", rec.Sunrise),
		zap.Int64("sunset", rec.Sunset),
		zap.Int("day_length", rec.DayLength))

	existing, err := s.find(ctx, rec.Date)
	if err == nil {
		s.logger.Info("Skipping insert for existing record",
			zap.String("date", rec.Date),
			zap.Uint("id", existing.ID))
		return existing.ID, metrics.UpsertExisting, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return 0, "", err
	}

	if s.afterLookup != nil {
		s.afterLookup()
	}

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if !storage.IsDuplicate(err) {
			return 0, "", fmt.Errorf("failed to insert astronomical record: %w", err)
		}

		// Another writer inserted the same date first.
		winner, findErr := s.find(ctx, rec.Date)
		if findErr != nil {
			return 0, "", fmt.Errorf("failed to re-read astronomical record after conflict: %w", findErr)
		}
		s.logger.Info("Concurrent insert resolved to existing record",
			zap.String("date", rec.Date),
			zap.Uint("id", winner.ID))
		return winner.ID, metrics.UpsertRace, nil
	}

	s.logger.Info("New astronomical record",
		zap.String("date", rec.Date),
		zap.Uint("id", rec.ID))
	s.cache.SetDefault(rec.Date, rec)
	return rec.ID, metrics.UpsertInserted, nil
}

// GetByDate returns the record for an exact YYYY-MM-DD date
func (s *Store) GetByDate(ctx context.Context, date string) (*Record, error) {
	rec, err := s.find(ctx, date)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Count returns the number of stored records
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Record{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count astronomical records: %w", err)
	}
	return n, nil
}

func (s *Store) find(ctx context.Context, date string) (Record, error) {
	if cached, ok := s.cache.Get(date); ok {
		return cached.(Record), nil
	}

	var rec Record
	err := s.db.WithContext(ctx).Where("date = ?", date).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to query astronomical record: %w", err)
	}

	s.cache.SetDefault(date, rec)
	return rec, nil
}

// Render returns rec in UTC and in the store's display timezone
func (s *Store) Render(rec Record) (LocalView, error) {
	return RenderLocal(rec, s.location)
}

// normalize converts provider strings into a storable record
func normalize(raw *RawResult) (Record, error) {
	if raw == nil {
		return Record{}, &ValidationError{Reason: "Cannot save data: raw data not found"}
	}
	if raw.Sunrise == "" {
		return Record{}, &ValidationError{Field: "sunrise", Reason: "missing"}
	}
	if raw.Sunset == "" {
		return Record{}, &ValidationError{Field: "sunset", Reason: "missing"}
	}
	if raw.DayLength < 0 {
		return Record{}, &ValidationError{Field: "day_length", Reason: "negative"}
	}

	sunrise, err := time.Parse(time.RFC3339, raw.Sunrise)
	if err != nil {
		return Record{}, &ValidationError{Field: "sunrise", Reason: err.Error()}
	}
	sunset, err := time.Parse(time.RFC3339, raw.Sunset)
	if err != nil {
		return Record{}, &ValidationError{Field: "sunset", Reason: err.Error()}
	}

	return Record{
		Date:      sunrise.UTC().Format(DateLayout),
		Sunrise:   sunrise.Unix(),
		Sunset:    sunset.Unix(),
		DayLength: int(raw.DayLength / 3600),
	}, nil
}

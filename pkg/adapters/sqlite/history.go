// Package sqlite provides the durable history store, backed by SQLite through gorm.
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/architect/pkg/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// promptRow is the persisted shape of a history record.
type promptRow struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"not null;index:idx_prompts_user_id,priority:1"`
	Username  *string   // Optional display label
	Prompt    string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
}

func (promptRow) TableName() string { return "prompts" }

func (r promptRow) record() domain.HistoryRecord {
	rec := domain.HistoryRecord{
		ID:        r.ID,
		UserID:    r.UserID,
		Prompt:    r.Prompt,
		CreatedAt: r.CreatedAt.UTC(),
	}
	if r.Username != nil {
		rec.DisplayName = *r.Username
	}
	return rec
}

// HistoryStore implements ports.HistoryStore on a SQLite database.
type HistoryStore struct {
	db  *gorm.DB
	now func() time.Time
}

// Option configures the HistoryStore.
type Option func(*HistoryStore)

// WithClock overrides the time source for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *HistoryStore) {
		s.now = now
	}
}

// Open opens (creating if needed) the database at path and migrates the schema.
func Open(path string, opts ...Option) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure database directory: %w", err)
	}

	// WAL keeps readers unblocked while a writer appends; busy_timeout absorbs
	// short write contention between concurrent appends.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=FULL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return New(db, opts...)
}

// New wraps an existing gorm connection and migrates the schema.
func New(db *gorm.DB, opts ...Option) (*HistoryStore, error) {
	if err := db.AutoMigrate(&promptRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}
	s := &HistoryStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Append inserts the record; the autoincrement key is the global, monotonic ID.
func (s *HistoryStore) Append(ctx context.Context, userID, displayName, prompt string) (domain.HistoryRecord, error) {
	row := promptRow{
		UserID:    userID,
		Prompt:    prompt,
		CreatedAt: s.now().UTC(),
	}
	if displayName != "" {
		row.Username = &displayName
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("failed to append history: %w", err)
	}
	return row.record(), nil
}

// Recent returns up to limit records, newest first.
func (s *HistoryStore) Recent(ctx context.Context, userID string, limit int) ([]domain.HistoryRecord, error) {
	if limit <= 0 {
		return []domain.HistoryRecord{}, nil
	}
	return s.query(ctx, userID, limit)
}

// All returns every record, newest first.
func (s *HistoryStore) All(ctx context.Context, userID string) ([]domain.HistoryRecord, error) {
	return s.query(ctx, userID, -1)
}

func (s *HistoryStore) query(ctx context.Context, userID string, limit int) ([]domain.HistoryRecord, error) {
	var rows []promptRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	records := make([]domain.HistoryRecord, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return records, nil
}

// Close releases the underlying connection pool.
func (s *HistoryStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

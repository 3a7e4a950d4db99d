package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/architect/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// HistoryStore implements ports.HistoryStore using Redis.
//
// Layout:
//
//	{prefix}seq           INCR counter, the global record ID
//	{prefix}record:{id}   JSON record
//	{prefix}user:{user}   ZSET of record IDs scored by ID
//
// Durability is that of the redis deployment (AOF/RDB).
type HistoryStore struct {
	client *backend.Client
	prefix string
	now    func() time.Time
}

// HistoryOption configures the redis history store.
type HistoryOption func(*HistoryStore)

// WithHistoryPrefix sets the key prefix for history keys.
func WithHistoryPrefix(prefix string) HistoryOption {
	return func(s *HistoryStore) {
		s.prefix = prefix
	}
}

// NewHistoryStore creates a new Redis history store from an existing client.
func NewHistoryStore(client *backend.Client, opts ...HistoryOption) *HistoryStore {
	s := &HistoryStore{
		client: client,
		prefix: DefaultPrefix + "history:",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HistoryStore) recordKey(id uint64) string {
	return s.prefix + "record:" + strconv.FormatUint(id, 10)
}

func (s *HistoryStore) userKey(userID string) string {
	return s.prefix + "user:" + userID
}

// Append reserves the next ID and writes the record and its index entry atomically.
func (s *HistoryStore) Append(ctx context.Context, userID, displayName, prompt string) (domain.HistoryRecord, error) {
	id, err := s.client.Incr(ctx, s.prefix+"seq").Uint64()
	if err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("failed to allocate history id: %w", err)
	}

	rec := domain.HistoryRecord{
		ID:          id,
		UserID:      userID,
		DisplayName: displayName,
		Prompt:      prompt,
		CreatedAt:   s.now().UTC(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("failed to marshal record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.recordKey(id), data, 0)
	pipe.ZAdd(ctx, s.userKey(userID), backend.Z{
		Score:  float64(id),
		Member: strconv.FormatUint(id, 10),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("failed to append history: %w", err)
	}
	return rec, nil
}

// Recent returns up to limit records, newest first.
func (s *HistoryStore) Recent(ctx context.Context, userID string, limit int) ([]domain.HistoryRecord, error) {
	if limit <= 0 {
		return []domain.HistoryRecord{}, nil
	}
	return s.newestFirst(ctx, userID, int64(limit)-1)
}

// All returns every record, newest first.
func (s *HistoryStore) All(ctx context.Context, userID string) ([]domain.HistoryRecord, error) {
	return s.newestFirst(ctx, userID, -1)
}

func (s *HistoryStore) newestFirst(ctx context.Context, userID string, stop int64) ([]domain.HistoryRecord, error) {
	ids, err := s.client.ZRevRange(ctx, s.userKey(userID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	if len(ids) == 0 {
		return []domain.HistoryRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, raw := range ids {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt history index entry %q: %w", raw, err)
		}
		keys[i] = s.recordKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	records := make([]domain.HistoryRecord, 0, len(values))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("history record %s is missing", keys[i])
		}
		var rec domain.HistoryRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %s: %w", keys[i], err)
		}
		records = append(records, rec)
	}
	return records, nil
}

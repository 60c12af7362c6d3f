package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrImportExpired means the pending import was consumed or its TTL lapsed.
var ErrImportExpired = errors.New("pending import not found or expired")

const stagingKeyPrefix = "import:pending:"

// StagedImport is a parsed attendance report awaiting confirmation.
// It bridges the two-step import wizard without server-side sessions.
type StagedImport struct {
	ID         string    `json:"id"`
	Result     Result    `json:"result"`
	MinMinutes int       `json:"min_minutes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Staging stores pending imports in Redis with an expiry.
type Staging struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStaging creates a pending-import store.
func NewStaging(rdb *redis.Client, ttl time.Duration) *Staging {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Staging{rdb: rdb, ttl: ttl}
}

// TTL returns the staging expiry.
func (s *Staging) TTL() time.Duration { return s.ttl }

// Put stages a parse result and returns the pending import.
func (s *Staging) Put(ctx context.Context, res Result, minMinutes int) (*StagedImport, error) {
	staged := &StagedImport{
		ID:         uuid.New().String(),
		Result:     res,
		MinMinutes: minMinutes,
		UploadedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(staged)
	if err != nil {
		return nil, fmt.Errorf("marshal pending import: %w", err)
	}
	if err := s.rdb.Set(ctx, stagingKeyPrefix+staged.ID, raw, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("stage import: %w", err)
	}
	return staged, nil
}

// Take consumes a pending import atomically; a second Take for the same ID
// returns ErrImportExpired.
func (s *Staging) Take(ctx context.Context, id string) (*StagedImport, error) {
	raw, err := s.rdb.GetDel(ctx, stagingKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrImportExpired
	}
	if err != nil {
		return nil, fmt.Errorf("take pending import: %w", err)
	}
	var staged StagedImport
	if err := json.Unmarshal([]byte(raw), &staged); err != nil {
		return nil, fmt.Errorf("unmarshal pending import: %w", err)
	}
	return &staged, nil
}

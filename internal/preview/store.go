// Package preview caches upload results in Redis so a client can fetch a
// parsed sheet again while the user reviews it.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/septivank/solar-telemetry-ingest/internal/record"
)

// DefaultTTL is how long a preview lives when no TTL is configured
const DefaultTTL = 60 * time.Minute

// ErrNotFound is returned when a preview never existed or has expired
var ErrNotFound = errors.New("upload preview not found or expired")

// Store keeps upload previews under preview:{domain}:{uploadId}
type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewClient connects to the Redis instance at url (redis://...)
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewStore creates a preview store. A non-positive ttl means DefaultTTL.
func NewStore(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl, logger: logger}
}

// Key returns the Redis key of a preview
func Key(domain, uploadID string) string {
	return "preview:" + domain + ":" + uploadID
}

// Save stores result under a fresh upload id and returns that id.
// result.UploadID is overwritten.
func (s *Store) Save(ctx context.Context, domain string, result record.UploadResult) (string, error) {
	id := uuid.NewString()
	result.UploadID = id

	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal preview: %w", err)
	}

	if err := s.client.Set(ctx, Key(domain, id), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store preview: %w", err)
	}

	s.logger.Debug("Stored upload preview",
		zap.String("domain", domain),
		zap.String("upload_id", id),
		zap.Int("rows", len(result.Rows)),
	)
	return id, nil
}

// Load returns the preview stored under uploadID
func (s *Store) Load(ctx context.Context, domain, uploadID string) (record.UploadResult, error) {
	payload, err := s.client.Get(ctx, Key(domain, uploadID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return record.UploadResult{}, ErrNotFound
	}
	if err != nil {
		return record.UploadResult{}, fmt.Errorf("failed to load preview: %w", err)
	}

	result, err := record.DecodeUploadResult(payload)
	if err != nil {
		return record.UploadResult{}, err
	}
	result.UploadID = uploadID
	return result, nil
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the Redis client
func (s *Store) Close() error {
	return s.client.Close()
}

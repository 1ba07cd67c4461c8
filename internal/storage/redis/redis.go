// Package redis provides a Redis-backed implementation of the storage.Store
// interface. Share expiry is delegated to native key TTLs.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mmynk/splitbill/internal/models"
	"github.com/mmynk/splitbill/internal/storage"
)

const keyPrefix = "share:"

// Ensure RedisStore implements storage.Store
var _ storage.Store = (*RedisStore)(nil)

var tracer = otel.Tracer("github.com/mmynk/splitbill/internal/storage/redis")

// RedisStore implements storage.Store using Redis.
type RedisStore struct {
	client *goredis.Client
	now    func() time.Time
}

// record is the JSON document stored under each share key.
type record struct {
	ID             string          `json:"id"`
	BillData       json.RawMessage `json:"billData"`
	People         json.RawMessage `json:"people"`
	PaymentMethods json.RawMessage `json:"paymentMethods,omitempty"`
	PasscodeHash   string          `json:"passcodeHash,omitempty"`
	CreatedAt      int64           `json:"createdAt"`
	UpdatedAt      int64           `json:"updatedAt"`
	ExpiresAt      int64           `json:"expiresAt,omitempty"`
}

// New connects to Redis at addr and verifies the connection.
func New(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewWithClient(client), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// CreateShare stores a new share. The key expires at share.ExpiresAt.
func (s *RedisStore) CreateShare(ctx context.Context, share *models.Share) error {
	ctx, span := tracer.Start(ctx, "redis.CreateShare")
	defer span.End()

	if share.ID == "" {
		share.ID = uuid.New().String()
	}
	now := s.now()
	share.CreatedAt = now.Unix()
	share.UpdatedAt = share.CreatedAt
	span.SetAttributes(attribute.String("share.id", share.ID))

	var ttl time.Duration
	if share.ExpiresAt != 0 {
		ttl = time.Unix(share.ExpiresAt, 0).Sub(now)
		if ttl <= 0 {
			return fmt.Errorf("share %s already expired", share.ID)
		}
	}

	data, err := json.Marshal(toRecord(share))
	if err != nil {
		return fmt.Errorf("failed to encode share: %w", err)
	}

	ok, err := s.client.SetNX(ctx, keyPrefix+share.ID, data, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store share: %w", err)
	}
	if !ok {
		return fmt.Errorf("share %s already exists", share.ID)
	}
	return nil
}

// GetShare retrieves a share by ID.
func (s *RedisStore) GetShare(ctx context.Context, shareID string) (*models.Share, error) {
	ctx, span := tracer.Start(ctx, "redis.GetShare")
	defer span.End()
	span.SetAttributes(attribute.String("share.id", shareID))

	data, err := s.client.Get(ctx, keyPrefix+shareID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, shareID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode share: %w", err)
	}
	share := rec.toShare()
	if share.Expired(s.now().Unix()) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, shareID)
	}
	return share, nil
}

// UpdateShare replaces the snapshot and keeps the key's remaining TTL.
func (s *RedisStore) UpdateShare(ctx context.Context, share *models.Share) error {
	ctx, span := tracer.Start(ctx, "redis.UpdateShare")
	defer span.End()
	span.SetAttributes(attribute.String("share.id", share.ID))

	existing, err := s.GetShare(ctx, share.ID)
	if err != nil {
		return err
	}
	existing.BillData = share.BillData
	existing.People = share.People
	existing.PaymentMethods = share.PaymentMethods
	existing.UpdatedAt = s.now().Unix()

	data, err := json.Marshal(toRecord(existing))
	if err != nil {
		return fmt.Errorf("failed to encode share: %w", err)
	}

	err = s.client.SetArgs(ctx, keyPrefix+share.ID, data, goredis.SetArgs{
		Mode:    "XX",
		KeepTTL: true,
	}).Err()
	if errors.Is(err, goredis.Nil) {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, share.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update share: %w", err)
	}
	share.UpdatedAt = existing.UpdatedAt
	return nil
}

// DeleteShare removes a share by ID.
func (s *RedisStore) DeleteShare(ctx context.Context, shareID string) error {
	ctx, span := tracer.Start(ctx, "redis.DeleteShare")
	defer span.End()
	span.SetAttributes(attribute.String("share.id", shareID))

	n, err := s.client.Del(ctx, keyPrefix+shareID).Result()
	if err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, shareID)
	}
	return nil
}

func toRecord(s *models.Share) record {
	return record{
		ID:             s.ID,
		BillData:       s.BillData,
		People:         s.People,
		PaymentMethods: s.PaymentMethods,
		PasscodeHash:   s.PasscodeHash,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		ExpiresAt:      s.ExpiresAt,
	}
}

func (r record) toShare() *models.Share {
	return &models.Share{
		ID:             r.ID,
		BillData:       r.BillData,
		People:         r.People,
		PaymentMethods: r.PaymentMethods,
		PasscodeHash:   r.PasscodeHash,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		ExpiresAt:      r.ExpiresAt,
	}
}

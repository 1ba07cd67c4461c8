// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitbill/internal/models"
)

// ErrNotFound is returned when a share does not exist or has expired.
var ErrNotFound = errors.New("share not found")

// Store defines the interface for share storage operations.
// This abstraction allows swapping storage backends (SQLite, Redis)
// without changing the service layer.
type Store interface {
	// CreateShare persists a new share.
	// The ID, CreatedAt and UpdatedAt fields are populated by the store.
	CreateShare(ctx context.Context, share *models.Share) error

	// GetShare retrieves a share by its ID.
	// Returns ErrNotFound if the share is unknown or expired.
	GetShare(ctx context.Context, shareID string) (*models.Share, error)

	// UpdateShare replaces the snapshot of an existing share. CreatedAt,
	// ExpiresAt and PasscodeHash are left as stored.
	// Returns ErrNotFound if the share is unknown or expired.
	UpdateShare(ctx context.Context, share *models.Share) error

	// DeleteShare removes a share.
	// Returns ErrNotFound if the share is unknown.
	DeleteShare(ctx context.Context, shareID string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

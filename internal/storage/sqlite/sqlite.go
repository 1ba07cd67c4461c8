// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitbill/internal/models"
	"github.com/mmynk/splitbill/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

var tracer = otel.Tracer("github.com/mmynk/splitbill/internal/storage/sqlite")

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL lets share reads proceed while a write is in flight.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateShare persists a new share to the database.
func (s *SQLiteStore) CreateShare(ctx context.Context, share *models.Share) error {
	ctx, span := tracer.Start(ctx, "sqlite.CreateShare")
	defer span.End()

	if share.ID == "" {
		share.ID = uuid.New().String()
	}
	now := s.now().Unix()
	share.CreatedAt = now
	share.UpdatedAt = now
	span.SetAttributes(attribute.String("share.id", share.ID))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shares (id, bill_data, people, payment_methods, passcode_hash, created_at, updated_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		share.ID, string(share.BillData), string(share.People), nullableJSON(share.PaymentMethods),
		share.PasscodeHash, share.CreatedAt, share.UpdatedAt, share.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert share: %w", err)
	}
	return nil
}

// GetShare retrieves a share by ID. Expired shares are reported as not found.
func (s *SQLiteStore) GetShare(ctx context.Context, shareID string) (*models.Share, error) {
	ctx, span := tracer.Start(ctx, "sqlite.GetShare")
	defer span.End()
	span.SetAttributes(attribute.String("share.id", shareID))

	var (
		share          models.Share
		billData       string
		people         string
		paymentMethods sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, bill_data, people, payment_methods, passcode_hash, created_at, updated_at, expires_at
		 FROM shares WHERE id = ?`,
		shareID,
	).Scan(&share.ID, &billData, &people, &paymentMethods, &share.PasscodeHash,
		&share.CreatedAt, &share.UpdatedAt, &share.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, shareID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share: %w", err)
	}

	if share.Expired(s.now().Unix()) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, shareID)
	}

	share.BillData = json.RawMessage(billData)
	share.People = json.RawMessage(people)
	if paymentMethods.Valid {
		share.PaymentMethods = json.RawMessage(paymentMethods.String)
	}
	return &share, nil
}

// UpdateShare replaces the snapshot of a live share.
func (s *SQLiteStore) UpdateShare(ctx context.Context, share *models.Share) error {
	ctx, span := tracer.Start(ctx, "sqlite.UpdateShare")
	defer span.End()
	span.SetAttributes(attribute.String("share.id", share.ID))

	now := s.now().Unix()
	result, err := s.db.ExecContext(ctx,
		`UPDATE shares SET bill_data = ?, people = ?, payment_methods = ?, updated_at = ?
		 WHERE id = ? AND (expires_at = 0 OR expires_at > ?)`,
		string(share.BillData), string(share.People), nullableJSON(share.PaymentMethods), now,
		share.ID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to update share: %w", err)
	}
	if err := requireRow(result, share.ID); err != nil {
		return err
	}
	share.UpdatedAt = now
	return nil
}

// DeleteShare removes a share by ID.
func (s *SQLiteStore) DeleteShare(ctx context.Context, shareID string) error {
	ctx, span := tracer.Start(ctx, "sqlite.DeleteShare")
	defer span.End()
	span.SetAttributes(attribute.String("share.id", shareID))

	result, err := s.db.ExecContext(ctx, "DELETE FROM shares WHERE id = ?", shareID)
	if err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}
	return requireRow(result, shareID)
}

// PurgeExpired deletes every share whose expiry has passed and returns how
// many were removed.
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM shares WHERE expires_at != 0 AND expires_at <= ?",
		s.now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired shares: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged shares: %w", err)
	}
	return n, nil
}

func requireRow(result sql.Result, shareID string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, shareID)
	}
	return nil
}

func nullableJSON(raw json.RawMessage) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}

package models

import "encoding/json"

// Share is a stored snapshot of a split, addressed by a generated ID.
// The snapshot fields are kept as opaque JSON and returned verbatim.
type Share struct {
	// ID is the unique identifier for the share (UUID format).
	ID string

	// BillData is the bill snapshot as sent by the client.
	BillData json.RawMessage

	// People is the participant list as sent by the client.
	People json.RawMessage

	// PaymentMethods is optional; nil when the client sent none.
	PaymentMethods json.RawMessage

	// PasscodeHash is a bcrypt hash; empty when the share is public.
	PasscodeHash string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64

	// ExpiresAt is a Unix timestamp; zero means the share never expires.
	ExpiresAt int64
}

// Expired reports whether the share has passed its expiry at the given time.
func (s *Share) Expired(now int64) bool {
	return s.ExpiresAt != 0 && now >= s.ExpiresAt
}

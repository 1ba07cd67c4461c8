// Package share defines the wire format of the share API and a client for it.
//
// A share is a snapshot of a finished split (bill, people and optional
// payment methods) stored on the server and addressed by an ID. The server
// treats the snapshot as opaque JSON; this package also offers typed
// helpers for callers that hold the domain values.
package share

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmynk/splitbill/internal/models"
)

// PasscodeHeader carries the read passcode of a protected share.
const PasscodeHeader = "X-Share-Passcode"

var (
	ErrInvalidPayload = errors.New("invalid share payload")
	ErrNotFound       = errors.New("share not found")
	ErrUnauthorized   = errors.New("share access denied")

	// ErrUnavailable covers every other failure to reach the share API.
	ErrUnavailable = errors.New("share service unavailable")
)

// CreateRequest is the body of POST /api/share.
type CreateRequest struct {
	BillData       json.RawMessage `json:"billData"`
	People         json.RawMessage `json:"people"`
	PaymentMethods json.RawMessage `json:"paymentMethods,omitempty"`
	Passcode       string          `json:"passcode,omitempty"`
}

// CreateResponse is returned by POST /api/share. EditToken authorizes later
// updates and deletion.
type CreateResponse struct {
	ID        string `json:"id"`
	EditToken string `json:"editToken"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`

	// URL is the viewer link, set when the server knows its public origin.
	URL string `json:"url,omitempty"`
}

// Snapshot is the body of GET /api/share/{id} and PUT /api/share/{id}.
type Snapshot struct {
	BillData       json.RawMessage `json:"billData"`
	People         json.RawMessage `json:"people"`
	PaymentMethods json.RawMessage `json:"paymentMethods"`
}

// NewSnapshot encodes domain values into a snapshot.
func NewSnapshot(bill models.Bill, people []models.Participant, methods []models.PaymentMethod) (Snapshot, error) {
	billData, err := json.Marshal(bill)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to encode bill: %w", err)
	}
	if people == nil {
		people = []models.Participant{}
	}
	peopleData, err := json.Marshal(people)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to encode people: %w", err)
	}
	if methods == nil {
		methods = []models.PaymentMethod{}
	}
	methodData, err := json.Marshal(methods)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to encode payment methods: %w", err)
	}
	return Snapshot{BillData: billData, People: peopleData, PaymentMethods: methodData}, nil
}

// Validate checks that billData and people are present JSON values and that
// paymentMethods, if present, is valid JSON. Nothing else about the contents
// is checked.
func (s Snapshot) Validate() error {
	if !present(s.BillData) {
		return fmt.Errorf("%w: billData is required", ErrInvalidPayload)
	}
	if !present(s.People) {
		return fmt.Errorf("%w: people is required", ErrInvalidPayload)
	}
	for name, raw := range map[string]json.RawMessage{
		"billData":       s.BillData,
		"people":         s.People,
		"paymentMethods": s.PaymentMethods,
	} {
		if len(raw) > 0 && !json.Valid(raw) {
			return fmt.Errorf("%w: %s is not valid JSON", ErrInvalidPayload, name)
		}
	}
	return nil
}

// WithDefaults returns the snapshot with a missing or null paymentMethods
// replaced by an empty list.
func (s Snapshot) WithDefaults() Snapshot {
	if !present(s.PaymentMethods) {
		s.PaymentMethods = json.RawMessage("[]")
	}
	return s
}

// Decode unpacks the snapshot into domain values. Missing payment methods
// decode as an empty list.
func (s Snapshot) Decode() (models.Bill, []models.Participant, []models.PaymentMethod, error) {
	var (
		bill    models.Bill
		people  []models.Participant
		methods []models.PaymentMethod
	)
	if err := json.Unmarshal(s.BillData, &bill); err != nil {
		return bill, nil, nil, fmt.Errorf("%w: billData: %v", ErrInvalidPayload, err)
	}
	if err := json.Unmarshal(s.People, &people); err != nil {
		return bill, nil, nil, fmt.Errorf("%w: people: %v", ErrInvalidPayload, err)
	}
	if present(s.PaymentMethods) {
		if err := json.Unmarshal(s.PaymentMethods, &methods); err != nil {
			return bill, nil, nil, fmt.Errorf("%w: paymentMethods: %v", ErrInvalidPayload, err)
		}
	}
	if methods == nil {
		methods = []models.PaymentMethod{}
	}
	return bill, people, methods, nil
}

// Snapshot returns the request's payload without the passcode.
func (r CreateRequest) Snapshot() Snapshot {
	return Snapshot{BillData: r.BillData, People: r.People, PaymentMethods: r.PaymentMethods}
}

// Link builds the viewer URL for a share.
func Link(origin, id string) string {
	return strings.TrimRight(origin, "/") + "/summary?id=" + url.QueryEscape(id)
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

package models

// Participant is a person among whom the bill is split.
// IDs are unique within a bill session; there is no identity across sessions.
type Participant struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name" validate:"required,max=64"`
	Color string `json:"color" yaml:"color"`
}

// Payment method types.
const (
	PaymentTypeEWallet = "ewallet"
	PaymentTypeBank    = "bank"
)

// PaymentMethod tells participants where to send their share.
type PaymentMethod struct {
	ID string `json:"id" yaml:"id"`

	// Type is either "ewallet" or "bank".
	Type string `json:"type" yaml:"type" validate:"required,oneof=ewallet bank"`

	// Name is the provider key (e.g., "gopay", "bca") or a free-form label.
	Name string `json:"name" yaml:"name" validate:"required,max=64"`

	// Number is the account or phone number.
	Number string `json:"number" yaml:"number" validate:"required,max=64"`
}

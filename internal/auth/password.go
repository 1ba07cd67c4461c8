package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPasscodeLength is the shortest passcode accepted for a share.
const MinPasscodeLength = 4

var (
	ErrInvalidPasscode = errors.New("invalid passcode")
	ErrWeakPasscode    = fmt.Errorf("passcode must be at least %d characters", MinPasscodeLength)
)

// ValidatePasscode checks if the passcode meets minimum requirements.
func ValidatePasscode(passcode string) error {
	if len([]rune(passcode)) < MinPasscodeLength {
		return ErrWeakPasscode
	}
	return nil
}

// HashPasscode validates and hashes a share passcode.
func HashPasscode(passcode string) (string, error) {
	if err := ValidatePasscode(passcode); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passcode: %w", err)
	}
	return string(hashed), nil
}

// CheckPasscode compares a passcode against its hash.
func CheckPasscode(hash, passcode string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(passcode)); err != nil {
		return ErrInvalidPasscode
	}
	return nil
}

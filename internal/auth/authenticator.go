package auth

import "time"

// ShareAuthenticator decides who may read and edit a share.
// This abstraction lets the share service stay independent of how edit
// rights and passcodes are implemented.
type ShareAuthenticator interface {
	// IssueEditToken returns a token granting edit rights on the share.
	IssueEditToken(shareID string) (string, error)

	// AuthorizeEdit checks that the token grants edit rights on the share.
	AuthorizeEdit(token, shareID string) error

	// ProtectPasscode returns the stored form of a read passcode.
	ProtectPasscode(passcode string) (string, error)

	// VerifyPasscode checks a read passcode against its stored form.
	VerifyPasscode(stored, passcode string) error
}

// ShareGuard implements ShareAuthenticator with JWT edit tokens and bcrypt
// passcodes.
type ShareGuard struct {
	jwt *JWTManager
}

// NewShareGuard creates a guard that signs edit tokens with secretKey.
// Tokens live for tokenDuration; zero means they never expire.
func NewShareGuard(secretKey string, tokenDuration time.Duration) *ShareGuard {
	return &ShareGuard{jwt: NewJWTManager(secretKey, tokenDuration)}
}

func (g *ShareGuard) IssueEditToken(shareID string) (string, error) {
	return g.jwt.Generate(shareID)
}

func (g *ShareGuard) AuthorizeEdit(token, shareID string) error {
	if token == "" {
		return ErrMissingToken
	}
	return g.jwt.Authorize(token, shareID)
}

func (g *ShareGuard) ProtectPasscode(passcode string) (string, error) {
	return HashPasscode(passcode)
}

func (g *ShareGuard) VerifyPasscode(stored, passcode string) error {
	if passcode == "" {
		return ErrInvalidPasscode
	}
	return CheckPasscode(stored, passcode)
}

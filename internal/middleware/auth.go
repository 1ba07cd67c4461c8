package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmynk/splitbill/internal/auth"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

// RequireEditToken returns a middleware that only lets a request through when
// it carries an edit token for the share named by the {id} path value.
func RequireEditToken(authn auth.ShareAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			shareID := r.PathValue("id")

			token, err := BearerToken(r.Header.Get("Authorization"))
			if err == nil {
				err = authn.AuthorizeEdit(token, shareID)
			}
			if err != nil {
				slog.Warn("Edit token rejected", "share_id", shareID, "error", err)
				writeJSONError(w, http.StatusUnauthorized, unauthorizedMessage(err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorizedMessage(err error) string {
	if errors.Is(err, auth.ErrMissingToken) {
		return auth.ErrMissingToken.Error()
	}
	return auth.ErrInvalidToken.Error()
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

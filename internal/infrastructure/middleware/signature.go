package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

// SignatureHeader carries the base64 HMAC-SHA256 of the request body
const SignatureHeader = "X-Relay-Hmac-SHA256"

// maxSignedBody caps the body read for verification
const maxSignedBody = 1 << 20

var (
	ErrMissingSignature = errors.New("missing signature")
	ErrInvalidSignature = errors.New("invalid signature")
)

// Sign returns the base64 HMAC-SHA256 of body under secret
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks header against the body signature in constant time
func VerifySignature(secret string, body []byte, header string) error {
	if header == "" {
		return ErrMissingSignature
	}
	given, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(given, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}

// SignatureMiddleware rejects requests whose body is not signed with secret.
// An empty secret disables verification.
func SignatureMiddleware(secret string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxSignedBody))
			if err != nil {
				http.Error(w, "Failed to read request body", http.StatusBadRequest)
				return
			}
			r.Body.Close()

			if err := VerifySignature(secret, body, r.Header.Get(SignatureHeader)); err != nil {
				logger.Warn().
					Err(err).
					Str("path", r.URL.Path).
					Msg("Request signature verification failed")
				http.Error(w, "Invalid signature", http.StatusUnauthorized)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

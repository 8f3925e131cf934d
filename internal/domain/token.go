package domain

import (
	"encoding/json"
	"log/slog"
	"strings"
)

const redacted = "[REDACTED]"

// Token is a bearer access token. Every formatting path prints a placeholder.
type Token string

// ParseBearer extracts the token from an Authorization header value.
// The scheme is matched case-insensitively; an absent or blank token
// returns ErrInputMissing.
func ParseBearer(header string) (Token, error) {
	header = strings.TrimSpace(header)
	scheme, rest, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInputMissing
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", ErrInputMissing
	}
	return Token(rest), nil
}

// Empty reports whether no token was supplied.
func (t Token) Empty() bool { return strings.TrimSpace(string(t)) == "" }

// Reveal returns the raw secret for use in an outbound Authorization header.
func (t Token) Reveal() string { return string(t) }

func (t Token) String() string {
	if t == "" {
		return ""
	}
	return redacted
}

func (t Token) GoString() string { return `domain.Token("` + redacted + `")` }

// LogValue keeps slog from ever emitting the secret.
func (t Token) LogValue() slog.Value { return slog.StringValue(t.String()) }

func (t Token) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

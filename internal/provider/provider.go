package provider

import (
	"context"
	"fmt"
)

// TokenResult is a successful token-endpoint response, normalized.
// RefreshToken is set only when the provider issued one: always on the
// initial code exchange (offline access is requested), and on refresh
// only when the provider rotated the credential.
type TokenResult struct {
	AccessToken  string
	ExpiresIn    int64
	RefreshToken string
}

// Error is a structured rejection from the provider's token endpoint.
// The exchange client passes Code through verbatim and never interprets
// it; classifying codes (e.g. invalid_grant as fatal) is the session
// manager's job.
type Error struct {
	Code        string
	Description string
}

func (e *Error) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("provider: %s: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("provider: %s", e.Code)
}

// Message returns the provider's human-readable description when
// available, falling back to the error code.
func (e *Error) Message() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Code
}

// Exchanger performs the two OAuth2 token-endpoint exchanges against
// the identity provider. Both calls are synchronous request/response
// and are never retried here; retry policy belongs to the caller.
type Exchanger interface {
	// AuthCodeURL returns the provider's consent-screen URL,
	// requesting offline access with forced consent so a refresh
	// token is issued.
	AuthCodeURL() string

	// ExchangeCode converts a one-time authorization code into tokens.
	ExchangeCode(ctx context.Context, code string) (*TokenResult, error)

	// ExchangeRefresh converts a stored refresh token into a fresh
	// access token.
	ExchangeRefresh(ctx context.Context, refreshToken string) (*TokenResult, error)
}

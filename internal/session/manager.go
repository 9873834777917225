package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auth-broker/internal/logger"
	"auth-broker/internal/provider"
	"auth-broker/internal/store"
)

var (
	// ErrNoCode is returned by Establish when the caller supplied no
	// authorization code.
	ErrNoCode = errors.New("session: no authorization code")

	// ErrNoRefreshToken is returned by Establish when the provider
	// granted access without a refresh token. Forced consent makes
	// this rare, but it is not guaranteed.
	ErrNoRefreshToken = errors.New("session: provider issued no refresh token")

	// ErrNoSession is returned when the caller supplied no session id.
	ErrNoSession = errors.New("session: no session id")

	// ErrSessionNotFound is returned when the store has no record for
	// the id: the session expired or never existed.
	ErrSessionNotFound = errors.New("session: not found")

	// ErrSessionInvalidated is returned when the provider permanently
	// rejected the stored refresh token. The record has already been
	// deleted; the client must re-authenticate.
	ErrSessionInvalidated = errors.New("session: invalidated")
)

// AccessToken is a short-lived credential handed back to the client.
type AccessToken struct {
	Token     string
	ExpiresIn int64
}

// Status is the result of a liveness check.
type Status struct {
	Authenticated bool
	Created       int64 // unix milliseconds, zero when unauthenticated
}

// Manager owns the session lifecycle: establishing a session from an
// authorization code, refreshing access tokens, and terminating
// sessions. It is the only component that creates, replaces, or
// deletes session records.
//
// Concurrent refreshes of the same session are not serialized: both
// may reach the provider, and with refresh-token rotation the later
// write wins while the earlier response's credential may already be
// stale. This mirrors the deployed behavior and is a documented
// limitation, not a bug.
type Manager struct {
	store     store.Store
	exchanger provider.Exchanger
	maxAge    time.Duration
	now       func() time.Time
}

func NewManager(s store.Store, e provider.Exchanger, maxAge time.Duration) *Manager {
	return &Manager{
		store:     s,
		exchanger: e,
		maxAge:    maxAge,
		now:       time.Now,
	}
}

// Establish exchanges an authorization code for a refresh token and
// stores it under a freshly generated session id. Ids are never
// reused: every login gets a new one, even for the same user.
func (m *Manager) Establish(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", ErrNoCode
	}

	result, err := m.exchanger.ExchangeCode(ctx, code)
	if err != nil {
		return "", err
	}

	if result.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}

	sessionID, err := GenerateID()
	if err != nil {
		return "", err
	}

	value, err := encodeRecord(Record{
		RefreshToken: result.RefreshToken,
		Created:      m.now().UnixMilli(),
	})
	if err != nil {
		return "", err
	}

	if err := m.store.Put(ctx, sessionID, value, m.maxAge); err != nil {
		return "", fmt.Errorf("session: failed to persist: %w", err)
	}

	return sessionID, nil
}

// Refresh exchanges the stored refresh token for a fresh access token.
// A provider rejection with code invalid_grant means the refresh token
// is permanently dead: the record is deleted before returning
// ErrSessionInvalidated, so a dead credential never stays cached. Any
// other provider failure is treated as transient and leaves the record
// untouched.
func (m *Manager) Refresh(ctx context.Context, sessionID string) (*AccessToken, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}

	raw, err := m.store.Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: store read failed: %w", err)
	}

	record, err := decodeRecord(raw)
	if err != nil {
		return nil, err
	}

	result, err := m.exchanger.ExchangeRefresh(ctx, record.RefreshToken)
	if err != nil {
		var providerErr *provider.Error
		if errors.As(err, &providerErr) && providerErr.Code == "invalid_grant" {
			if delErr := m.store.Delete(ctx, sessionID); delErr != nil {
				logger.Error("failed to delete invalidated session", map[string]any{
					"error": delErr.Error(),
				})
			}
			return nil, ErrSessionInvalidated
		}
		return nil, fmt.Errorf("session: refresh failed: %w", err)
	}

	// Providers may rotate refresh tokens. Ignoring a rotated token
	// would make every later refresh fail permanently, so the record
	// is replaced wholesale with the new credential.
	if result.RefreshToken != "" && result.RefreshToken != record.RefreshToken {
		if err := m.rotate(ctx, sessionID, record, result.RefreshToken); err != nil {
			return nil, err
		}
	}

	return &AccessToken{
		Token:     result.AccessToken,
		ExpiresIn: result.ExpiresIn,
	}, nil
}

// Terminate deletes the session record if present. Idempotent: absent
// ids and repeated calls are not errors.
func (m *Manager) Terminate(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return m.store.Delete(ctx, sessionID)
}

// Inspect reports whether a session is live. It is a pure store read:
// no provider call, no state transition, ever.
func (m *Manager) Inspect(ctx context.Context, sessionID string) (Status, error) {
	if sessionID == "" {
		return Status{}, nil
	}

	raw, err := m.store.Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("session: store read failed: %w", err)
	}

	record, err := decodeRecord(raw)
	if err != nil {
		return Status{}, err
	}

	return Status{
		Authenticated: true,
		Created:       record.Created,
	}, nil
}

func (m *Manager) rotate(ctx context.Context, sessionID string, old Record, refreshToken string) error {
	value, err := encodeRecord(Record{
		RefreshToken: refreshToken,
		Created:      old.Created,
	})
	if err != nil {
		return err
	}

	// Absolute expiry stays anchored to session creation: the rewrite
	// carries the remaining TTL, not a fresh full one.
	remaining := time.UnixMilli(old.Created).Add(m.maxAge).Sub(m.now())
	if remaining < time.Second {
		remaining = time.Second
	}

	if err := m.store.Put(ctx, sessionID, value, remaining); err != nil {
		return fmt.Errorf("session: failed to persist rotated token: %w", err)
	}
	return nil
}

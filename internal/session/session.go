// Package session exposes the signed-in user's state: bearer token,
// profile document, account type, and the device registration token. The
// token lives in the system keyring when available; everything else lives
// in the durable key-value store under the same keys the mobile app used.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/push-center/internal/credential"
	"github.com/nhle/push-center/internal/store"
)

// Storage keys, matching the mobile app's key-value layout.
const (
	keyUserToken   = "userToken"
	keyUser        = "user"
	keyAccountType = "accountType"
	keyDeviceToken = "fcmToken"
	keyDeviceID    = "deviceId"
)

// ErrNoToken is returned when no bearer token is stored anywhere.
var ErrNoToken = errors.New("session: no user token stored")

// Session reads and writes the current user's state. ring may be nil, in
// which case the token is kept in the key-value store only.
type Session struct {
	kv   store.KeyValue
	ring *credential.Ring
}

// New creates a Session over the given key-value store and optional
// keyring.
func New(kv store.KeyValue, ring *credential.Ring) *Session {
	return &Session{kv: kv, ring: ring}
}

// Token returns the bearer token, preferring the keyring.
func (s *Session) Token(ctx context.Context) (string, error) {
	if s.ring != nil {
		if token, err := s.ring.Get(keyUserToken); err == nil && token != "" {
			return token, nil
		}
	}

	token, err := s.kv.Get(ctx, keyUserToken)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("reading user token: %w", err)
	}
	return token, nil
}

// SetToken stores the bearer token in the keyring when available, and in
// the key-value store otherwise.
func (s *Session) SetToken(ctx context.Context, token string) error {
	if s.ring != nil {
		return s.ring.Set(keyUserToken, token)
	}
	return s.kv.Set(ctx, keyUserToken, token)
}

// userDoc is the subset of the stored user document the router needs.
type userDoc struct {
	ID string `json:"_id"`
}

// CurrentUserID returns the signed-in user's id, or empty when no user
// document is stored.
func (s *Session) CurrentUserID(ctx context.Context) (string, error) {
	raw, err := s.kv.Get(ctx, keyUser)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading user document: %w", err)
	}

	var doc userDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return "", fmt.Errorf("decoding user document: %w", err)
	}
	return doc.ID, nil
}

// UserDocument returns the raw stored user document JSON, or empty when
// absent.
func (s *Session) UserDocument(ctx context.Context) (string, error) {
	raw, err := s.kv.Get(ctx, keyUser)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading user document: %w", err)
	}
	return raw, nil
}

// AccountType returns the stored account type, defaulting to "user".
func (s *Session) AccountType(ctx context.Context) string {
	value, err := s.kv.Get(ctx, keyAccountType)
	if err != nil || value == "" {
		return "user"
	}
	return value
}

// SetDeviceToken persists the transport registration token.
func (s *Session) SetDeviceToken(ctx context.Context, token string) error {
	return s.kv.Set(ctx, keyDeviceToken, token)
}

// DeviceToken returns the stored transport registration token, or empty.
func (s *Session) DeviceToken(ctx context.Context) string {
	token, err := s.kv.Get(ctx, keyDeviceToken)
	if err != nil {
		return ""
	}
	return token
}

// EnsureDeviceID returns a stable per-install identifier, generating and
// persisting one on first use.
func (s *Session) EnsureDeviceID(ctx context.Context) (string, error) {
	id, err := s.kv.Get(ctx, keyDeviceID)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("reading device id: %w", err)
	}

	id = uuid.New().String()
	if err := s.kv.Set(ctx, keyDeviceID, id); err != nil {
		return "", fmt.Errorf("storing device id: %w", err)
	}
	return id, nil
}

// Clear wipes the session: token (both homes), user document, account
// type, and device token. The device id survives; it identifies the
// install, not the user.
func (s *Session) Clear(ctx context.Context) error {
	if s.ring != nil {
		// Best-effort; the keyring may never have held a token.
		_ = s.ring.Delete(keyUserToken)
	}
	return s.kv.MultiRemove(ctx, []string{
		keyUserToken, keyUser, keyAccountType, keyDeviceToken,
	})
}

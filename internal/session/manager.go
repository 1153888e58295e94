package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/inkwell/internal/common"
	"github.com/dmitrijs2005/inkwell/internal/logging"
)

// timeNow is a test seam.
var timeNow = time.Now

// Manager owns the current session. It is the single place the rest of the
// client reads identity from: the document facade derives the cache key from
// UserID, and the gateway attaches AccessToken to outbound requests.
//
// Every identity change (sign-in as a different user, sign-out) advances the
// epoch counter. Consumers compare epochs between calls to detect account
// switches without holding a reference to the session itself.
type Manager struct {
	store  Store
	logger logging.Logger

	mu      sync.RWMutex
	current *Session
	epoch   uint64
}

func NewManager(store Store, logger logging.Logger) *Manager {
	return &Manager{store: store, logger: logger}
}

// Restore loads a previously persisted session. An absent session is not an
// error; an expired one is discarded from the store.
func (m *Manager) Restore(ctx context.Context) error {
	s, err := m.store.Load(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("restore session: %w", err)
	}

	if s.Expired(timeNow()) {
		m.logger.Info(ctx, "stored session expired, discarding", "email", s.Email)
		if err := m.store.Clear(ctx); err != nil {
			return fmt.Errorf("drop expired session: %w", err)
		}
		return nil
	}

	m.swap(&s)
	m.logger.Info(ctx, "session restored", "email", s.Email, "user_id", s.UserID)
	return nil
}

// SetSession persists and installs a freshly obtained session.
func (m *Manager) SetSession(ctx context.Context, s Session) error {
	if err := m.store.Save(ctx, s); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	m.swap(&s)
	return nil
}

// Clear signs out: the persisted session is removed and the in-memory
// identity dropped.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.swap(nil)
	return nil
}

// swap installs the new session and advances the epoch when the identity
// actually changed.
func (m *Manager) swap(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var oldID, newID string
	if m.current != nil {
		oldID = m.current.UserID
	}
	if s != nil {
		newID = s.UserID
	}

	m.current = s
	if oldID != newID {
		m.epoch++
	}
}

// Current returns the active session, if any.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// UserID returns the signed-in user's id, or ErrUnauthenticated.
func (m *Manager) UserID() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return "", common.ErrUnauthenticated
	}
	return m.current.UserID, nil
}

// AccessToken returns the bearer token for outbound requests, or
// ErrUnauthenticated. Implements the gateway's token provider.
func (m *Manager) AccessToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return "", common.ErrUnauthenticated
	}
	return m.current.AccessToken, nil
}

// Epoch returns the identity-change counter.
func (m *Manager) Epoch() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch
}

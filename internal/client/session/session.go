// Package session holds the bearer credential for the signed-in user.
//
// The credential lives only in process memory (the equivalent of browser
// session storage): it is written by a successful sign-in or sign-up, erased
// by sign-out, and read by every component that talks to the backend. A
// Session is created once and passed explicitly to each component.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrNoCredential is returned when no usable credential is stored.
var ErrNoCredential = errors.New("no credential")

// Store is where the raw token is kept.
type Store interface {
	Get() (string, bool)
	Set(token string)
	Delete()
}

// MemoryStore is an ephemeral Store. Nothing survives process exit.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

func (m *MemoryStore) Set(token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

func (m *MemoryStore) Delete() {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
}

// Session reads and writes the credential and exposes what can be learned
// from it without contacting the backend.
//
// The token is treated as opaque. When it happens to be a JWT its claims are
// decoded without verification: an elapsed "exp" makes the credential count
// as absent, and "sub" is offered as the viewer id.
type Session struct {
	store  Store
	now    func() time.Time
	parser *jwt.Parser
}

func New(store Store) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Session{
		store:  store,
		now:    time.Now,
		parser: jwt.NewParser(),
	}
}

// Token returns the stored credential or ErrNoCredential.
func (s *Session) Token() (string, error) {
	token, ok := s.store.Get()
	if !ok {
		return "", ErrNoCredential
	}
	if claims, ok := s.claims(token); ok {
		exp, err := claims.GetExpirationTime()
		if err == nil && exp != nil && !exp.After(s.now()) {
			return "", ErrNoCredential
		}
	}
	return token, nil
}

// SetToken stores a credential returned by sign-in or sign-up.
func (s *Session) SetToken(token string) error {
	if token == "" {
		return ErrNoCredential
	}
	s.store.Set(token)
	return nil
}

// Clear erases the credential (sign-out).
func (s *Session) Clear() {
	s.store.Delete()
}

func (s *Session) SignedIn() bool {
	_, err := s.Token()
	return err == nil
}

// ViewerID returns the subject of a JWT credential when it is a UUID.
func (s *Session) ViewerID() (uuid.UUID, bool) {
	token, err := s.Token()
	if err != nil {
		return uuid.Nil, false
	}
	claims, ok := s.claims(token)
	if !ok {
		return uuid.Nil, false
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (s *Session) claims(token string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

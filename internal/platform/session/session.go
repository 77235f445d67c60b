// Package session holds the bearer token that authenticates the dashboard
// against the clinic API. The token is set by a login flow, read by every
// request and cleared on logout; no expiry is tracked locally.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/clinica/dashboard/internal/platform/auth"
)

// Provider hands out the current token. An empty token means there is no
// session.
type Provider interface {
	Token() (string, error)
}

// Store is a Provider whose token can be replaced or removed.
type Store interface {
	Provider
	SetToken(token string) error
	Clear() error
}

// Static is a fixed token, handy for tests and one-shot commands.
type Static string

func (s Static) Token() (string, error) { return string(s), nil }

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Token() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryStore) SetToken(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	return m.SetToken("")
}

var (
	bucketName = []byte("session")
	tokenKey   = []byte("token")
)

// BoltStore persists the token in a bbolt file so that it survives between
// invocations of the dashboard, like browser local storage does.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the session file at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session file %s: %w", path, err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Token() (string, error) {
	var token string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		token = string(b.Get(tokenKey))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("read session token: %w", err)
	}
	return token, nil
}

func (s *BoltStore) SetToken(token string) error {
	if token == "" {
		return errors.New("empty session token")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return fmt.Errorf("create session bucket: %w", err)
		}
		return b.Put(tokenKey, []byte(token))
	})
}

func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		return b.Delete(tokenKey)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Describe reports whether p holds a session and, when its token is a JWT,
// the claims it carries. Opaque tokens are a valid session with nil claims.
func Describe(p Provider) (*auth.Claims, bool, error) {
	token, err := p.Token()
	if err != nil {
		return nil, false, err
	}
	if token == "" {
		return nil, false, nil
	}
	claims, err := auth.InspectToken(token)
	if err != nil {
		return nil, true, nil
	}
	return claims, true, nil
}

package mockapi

import (
	"errors"
	"maps"
	"sync"
	"time"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// Store persists the mock's accounts. Emails are stored as given; callers
// normalize them.
type Store interface {
	// CreateUser assigns the ID and creation time of u and stores it.
	CreateUser(u *User, passwordHash []byte) error
	UserByEmail(email string) (*User, []byte, error)
	UserByID(id int64) (*User, error)
	// CompleteOnboarding marks the questionnaire done and keeps its answers.
	CompleteOnboarding(id int64, answers map[string]string, cvName string) (*User, error)
	Close() error
}

type account struct {
	user User
	hash []byte
}

// MemoryStore keeps accounts for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	byEmail map[string]*account
	byID    map[int64]*account
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byEmail: make(map[string]*account),
		byID:    make(map[int64]*account),
	}
}

func (m *MemoryStore) CreateUser(u *User, passwordHash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[u.Email]; exists {
		return ErrUserExists
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now().UTC()
	a := &account{user: *u, hash: passwordHash}
	m.byEmail[u.Email] = a
	m.byID[u.ID] = a
	return nil
}

func (m *MemoryStore) UserByEmail(email string) (*User, []byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.byEmail[email]
	if !ok {
		return nil, nil, ErrUserNotFound
	}
	u := a.copyUser()
	return &u, a.hash, nil
}

func (m *MemoryStore) UserByID(id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := a.copyUser()
	return &u, nil
}

func (m *MemoryStore) CompleteOnboarding(id int64, answers map[string]string, cvName string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	a.user.HasTakenOnboarding = true
	a.user.Assessment = maps.Clone(answers)
	a.user.CVName = cvName
	u := a.copyUser()
	return &u, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

func (a *account) copyUser() User {
	u := a.user
	u.Assessment = maps.Clone(a.user.Assessment)
	return u
}

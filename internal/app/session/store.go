package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"campus-canteen/internal/adapter/logger"
	"campus-canteen/internal/domain"
	"campus-canteen/internal/interfaces"
)

const storageKey = "user-storage"

var ErrNotAuthenticated = errors.New("no user is signed in")

type state struct {
	IsAuthenticated bool         `json:"is_authenticated"`
	User            *domain.User `json:"user,omitempty"`
}

// Store keeps the signed-in user snapshot, persisted under the same named
// key the web client used.
type Store struct {
	mu     sync.Mutex
	state  state
	snaps  interfaces.Snapshotter
	remote interfaces.RemoteAPI
	logger logger.Logger
}

func NewStore(snaps interfaces.Snapshotter, remote interfaces.RemoteAPI, lgr logger.Logger) (*Store, error) {
	s := &Store{
		snaps:  snaps,
		remote: remote,
		logger: lgr,
	}

	var saved state
	ok, err := snaps.Load(storageKey, &saved)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session snapshot: %w", err)
	}
	if ok {
		s.state = saved
	}

	return s, nil
}

// Login resolves the user through the platform API and stores the snapshot.
// Credential verification is the API's concern.
func (s *Store) Login(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.remote.FetchUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state{IsAuthenticated: true, User: user}
	s.persist()

	u := *user
	return &u, nil
}

func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state{}
	s.persist()
}

func (s *Store) Current() (*domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsAuthenticated || s.state.User == nil {
		return nil, false
	}
	u := *s.state.User
	return &u, true
}

// UpdateUser merges non-empty profile fields into the cached snapshot. No-op
// while signed out; the platform account is updated separately.
func (s *Store) UpdateUser(update domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsAuthenticated || s.state.User == nil {
		return
	}

	if update.Name != "" {
		s.state.User.Name = update.Name
	}
	if update.Email != "" {
		s.state.User.Email = update.Email
	}
	if update.Department != "" {
		s.state.User.Department = update.Department
	}
	s.persist()
}

// AddCredits adjusts the cached canteen-credit balance. No-op while signed
// out.
func (s *Store) AddCredits(amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsAuthenticated || s.state.User == nil {
		return
	}
	s.state.User.CanteenCredits += amount
	s.persist()
}

func (s *Store) persist() {
	if err := s.snaps.Save(storageKey, s.state); err != nil {
		s.logger.Error("session_persist_failed", "Failed to persist session snapshot", "", nil, err)
	}
}

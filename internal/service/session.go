package service

import (
	"errors"
	"sync"
	"time"
)

// MaxSessionFiles caps how many files one interactive batch may collect.
const MaxSessionFiles = 50

var (
	// ErrNoSession marks a session operation for a user without one.
	ErrNoSession = errors.New("no active session")

	// ErrSessionFull marks an append beyond the per-batch file cap.
	ErrSessionFull = errors.New("session file limit reached")
)

// Session is one in-progress interactive batch collection.
type Session struct {
	UserID     int64
	FileTokens []string
	StartedAt  time.Time
	UpdatedAt  time.Time
}

// SessionStore tracks interactive batch-collection sessions, one per user.
// Sessions are in-memory only; an abandoned session is pruned on the next
// touch past the timeout.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	timeout  time.Duration
}

func NewSessionStore(timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SessionStore{
		sessions: make(map[int64]*Session),
		timeout:  timeout,
	}
}

// Create starts a fresh session for the user, replacing any existing one.
func (s *SessionStore) Create(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	session := &Session{
		UserID:    userID,
		StartedAt: now,
		UpdatedAt: now,
	}
	s.sessions[userID] = session
	return session
}

// Get returns the user's live session, pruning it first if it timed out.
func (s *SessionStore) Get(userID int64) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(userID)
}

func (s *SessionStore) getLocked(userID int64) (*Session, bool) {
	session, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	if time.Since(session.UpdatedAt) > s.timeout {
		delete(s.sessions, userID)
		return nil, false
	}
	return session, true
}

// Append adds a file token to the user's session. Returns the new member
// count.
func (s *SessionStore) Append(userID int64, fileToken string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.getLocked(userID)
	if !ok {
		return 0, ErrNoSession
	}
	if len(session.FileTokens) >= MaxSessionFiles {
		return len(session.FileTokens), ErrSessionFull
	}

	session.FileTokens = append(session.FileTokens, fileToken)
	session.UpdatedAt = time.Now()
	return len(session.FileTokens), nil
}

// Complete ends the session and returns its collected tokens in order.
func (s *SessionStore) Complete(userID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.getLocked(userID)
	if !ok {
		return nil, ErrNoSession
	}
	delete(s.sessions, userID)
	return session.FileTokens, nil
}

// Cancel discards the user's session. Cancelling without one is a no-op.
func (s *SessionStore) Cancel(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

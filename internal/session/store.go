// Package session tracks the in-memory per-connection state shared by every
// transport.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/broadcast"
	"github.com/notepid/dusk_bbs/internal/prefs"
)

// Board used when the General board could not be resolved at startup.
const (
	FallbackBoardID   = 1
	FallbackBoardName = "General"
)

// Store maps session ids to sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	queue *broadcast.Queue
	log   *zap.Logger

	boardMu   sync.RWMutex
	boardSet  bool
	boardID   int
	boardName string
}

// NewStore creates an empty store bound to a broadcast queue.
func NewStore(queue *broadcast.Queue, log *zap.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		queue:    queue,
		log:      log,
	}
}

// SetDefaultBoard caches the board every session starts on.
func (s *Store) SetDefaultBoard(id int, name string) {
	s.boardMu.Lock()
	defer s.boardMu.Unlock()
	s.boardID, s.boardName, s.boardSet = id, name, true
}

// DefaultBoard returns the cached default board, or the fallback pair when
// the cache was never populated.
func (s *Store) DefaultBoard() (int, string) {
	s.boardMu.RLock()
	defer s.boardMu.RUnlock()
	if !s.boardSet {
		s.log.Error("default board not resolved, using fallback",
			zap.Int("board_id", FallbackBoardID), zap.String("board", FallbackBoardName))
		return FallbackBoardID, FallbackBoardName
	}
	return s.boardID, s.boardName
}

// Create registers a fresh guest session and returns it. It never fails.
func (s *Store) Create(kind Kind) *Session {
	boardID, boardName := s.DefaultBoard()
	sess := &Session{
		ID:            uuid.NewString(),
		Kind:          kind,
		CreatedAt:     time.Now(),
		identity:      Identity{Username: GuestName},
		BoardID:       boardID,
		BoardName:     boardName,
		LastBroadcast: s.queue.Tail(),
		Colors:        prefs.Defaults(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.log.Debug("session created", zap.String("session", sess.ID), zap.String("kind", string(kind)))
	return sess
}

// Get returns a session by id.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Contains reports whether sess is still the registered session for its id.
func (s *Store) Contains(sess *Session) bool {
	cur, ok := s.Get(sess.ID)
	return ok && cur == sess
}

// End removes a session and closes its game. It reports whether the session
// existed.
func (s *Store) End(id string) bool {
	sess, ok := s.remove(id)
	if !ok {
		return false
	}
	sess.Lock()
	sess.EndGame()
	sess.Unlock()
	s.log.Debug("session ended", zap.String("session", id))
	return true
}

// Kick removes a session immediately. Its game is closed once any command it
// is running finishes. The victim is not notified.
func (s *Store) Kick(id string) bool {
	sess, ok := s.remove(id)
	if !ok {
		return false
	}
	go func() {
		sess.Lock()
		defer sess.Unlock()
		sess.EndGame()
	}()
	return true
}

func (s *Store) remove(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	return sess, ok
}

// List returns a snapshot of all sessions.
func (s *Store) List() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

// Count returns the number of sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// LoggedInUsernames returns the names of all logged-in sessions, in map
// iteration order.
func (s *Store) LoggedInUsernames() []string {
	var names []string
	for _, sess := range s.List() {
		if id := sess.Identity(); id.LoggedIn {
			names = append(names, id.Username)
		}
	}
	return names
}

// FindLoggedIn returns every logged-in session for username.
func (s *Store) FindLoggedIn(username string) []*Session {
	var out []*Session
	for _, sess := range s.List() {
		if id := sess.Identity(); id.LoggedIn && id.Username == username {
			out = append(out, sess)
		}
	}
	return out
}

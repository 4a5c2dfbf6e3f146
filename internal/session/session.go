package session

import (
	"sync"
	"time"

	"github.com/notepid/dusk_bbs/internal/game"
	"github.com/notepid/dusk_bbs/internal/prefs"
	"github.com/notepid/dusk_bbs/internal/user"
)

// Kind is the transport a session arrived on.
type Kind string

// Connection kinds.
const (
	KindWeb    Kind = "web"
	KindTelnet Kind = "telnet"
	KindSSH    Kind = "ssh"
)

// Colored reports whether responses for this kind carry ANSI colour.
func (k Kind) Colored() bool {
	return k == KindTelnet || k == KindSSH
}

// GuestName is the display name of a session that is not logged in.
const GuestName = "guest"

// Identity is a snapshot of who a session belongs to.
type Identity struct {
	Username string
	LoggedIn bool
	UserID   int
	Role     string
}

// Session is the per-connection state.
//
// Commands for one session run one at a time under Lock. The exported fields
// below are owned by whoever holds that lock. Identity is also read by other
// sessions (WHO, KICK) and has its own lock.
type Session struct {
	ID        string
	Kind      Kind
	CreatedAt time.Time

	cmd sync.Mutex

	idMu     sync.RWMutex
	identity Identity

	BoardID       int
	BoardName     string
	LastBroadcast int
	Colors        map[string]string
	Game          game.Game
	GameName      string
}

// Lock serialises command execution for this session.
func (s *Session) Lock() { s.cmd.Lock() }

// Unlock releases the command lock.
func (s *Session) Unlock() { s.cmd.Unlock() }

// Identity returns a snapshot of the session's identity.
func (s *Session) Identity() Identity {
	s.idMu.RLock()
	defer s.idMu.RUnlock()
	return s.identity
}

// Username returns the display name, "guest" when not logged in.
func (s *Session) Username() string {
	return s.Identity().Username
}

// LoggedIn reports whether an account is attached.
func (s *Session) LoggedIn() bool {
	return s.Identity().LoggedIn
}

// IsSysop reports whether the logged-in account has the sysop role.
func (s *Session) IsSysop() bool {
	id := s.Identity()
	return id.LoggedIn && id.Role == user.RoleSysop
}

// Login attaches an account and its stored colours.
func (s *Session) Login(u *user.User, colors map[string]string) {
	s.idMu.Lock()
	s.identity = Identity{Username: u.Username, LoggedIn: true, UserID: u.ID, Role: u.Role}
	s.idMu.Unlock()
	s.Colors = colors
}

// Logout detaches the account, ends any game and resets colours.
func (s *Session) Logout() {
	s.idMu.Lock()
	s.identity = Identity{Username: GuestName}
	s.idMu.Unlock()
	s.EndGame()
	s.Colors = prefs.Defaults()
}

// Color resolves the colour name for a UI element.
func (s *Session) Color(element string) string {
	return prefs.Resolve(s.Colors, element)
}

// StartGame attaches a running game.
func (s *Session) StartGame(name string, g game.Game) {
	s.Game = g
	s.GameName = name
}

// EndGame closes and detaches the active game, if any.
func (s *Session) EndGame() {
	if s.Game != nil {
		s.Game.Close()
	}
	s.Game = nil
	s.GameName = ""
}

// InGame reports whether a game is intercepting input.
func (s *Session) InGame() bool {
	return s.Game != nil
}

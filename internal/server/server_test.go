package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/notepid/dusk_bbs/internal/ansi"
	"github.com/notepid/dusk_bbs/internal/broadcast"
	"github.com/notepid/dusk_bbs/internal/command"
	"github.com/notepid/dusk_bbs/internal/db"
	"github.com/notepid/dusk_bbs/internal/filearea"
	"github.com/notepid/dusk_bbs/internal/game"
	"github.com/notepid/dusk_bbs/internal/mail"
	"github.com/notepid/dusk_bbs/internal/message"
	"github.com/notepid/dusk_bbs/internal/prefs"
	"github.com/notepid/dusk_bbs/internal/session"
	"github.com/notepid/dusk_bbs/internal/user"
)

var ansiRE = regexp.MustCompile("\x1b\\[[0-9;]*[A-Za-z]")

func newLineHandler(t *testing.T) (*LineHandler, *session.Store) {
	t.Helper()
	log := zap.NewNop()

	database, err := db.Open(filepath.Join(t.TempDir(), "bbs.db"), log)
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	users := user.NewRepo(database.DB)
	users.HashCost = bcrypt.MinCost

	queue := broadcast.NewQueue()
	store := session.NewStore(queue, log)
	store.SetDefaultBoard(session.FallbackBoardID, session.FallbackBoardName)

	games := game.NewRegistry()
	if err := games.Register(game.NumberGuessName, "guess", func() (game.Game, error) {
		return game.NewNumberGuessWithTarget(10, 3, 5), nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	d := command.New(command.Deps{
		Sessions: store,
		Queue:    queue,
		Users:    users,
		Boards:   message.NewRepo(database.DB),
		Mail:     mail.NewRepo(database.DB),
		Files:    filearea.NewRepo(database.DB),
		Prefs:    prefs.NewRepo(database.DB),
		Games:    games,
	}, log)

	return NewLineHandler(d, store, database, log), store
}

// client is the far end of a net.Pipe. Everything the server writes is
// collected in the background.
type client struct {
	t    *testing.T
	conn net.Conn

	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func newClient(t *testing.T, conn net.Conn) *client {
	c := &client{t: t, conn: conn}
	go func() {
		chunk := make([]byte, 512)
		for {
			n, err := conn.Read(chunk)
			c.mu.Lock()
			c.buf.Write(chunk[:n])
			if err != nil {
				c.closed = true
			}
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}()
	t.Cleanup(func() { conn.Close() })
	return c
}

func (c *client) send(line string) {
	c.t.Helper()
	if _, err := io.WriteString(c.conn, line+"\r\n"); err != nil {
		c.t.Fatalf("write %q: %v", line, err)
	}
}

// sendClosing writes a line the server answers by hanging up. It ends with
// CR only: the server acts on CR and closes before it would read an LF.
func (c *client) sendClosing(line string) {
	c.t.Helper()
	if _, err := io.WriteString(c.conn, line+"\r"); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		c.t.Fatalf("write %q: %v", line, err)
	}
}

// waitFor blocks until the plain-text output contains want, then discards
// everything read so far.
func (c *client) waitFor(want string) string {
	c.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		out := ansiRE.ReplaceAllString(c.buf.String(), "")
		if strings.Contains(out, want) {
			c.buf.Reset()
			c.mu.Unlock()
			return out
		}
		c.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t.Fatalf("timed out waiting for %q, have %q", want, c.buf.String())
	return ""
}

func (c *client) waitClosed() {
	c.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	c.t.Fatalf("connection was not closed")
}

func startSession(t *testing.T, kind session.Kind) (*client, *session.Store, <-chan struct{}) {
	t.Helper()
	h, store := newLineHandler(t)
	serverSide, clientSide := net.Pipe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Serve(context.Background(), serverSide, kind, "pipe")
	}()
	return newClient(t, clientSide), store, done
}

func TestLineSessionBannerAndQuit(t *testing.T) {
	c, store, done := startSession(t, session.KindTelnet)

	out := c.waitFor("guest> ")
	if !strings.Contains(out, "Type HELP for a list of commands.") {
		t.Fatalf("expected banner, got %q", out)
	}
	if store.Count() != 1 {
		t.Fatalf("expected one session, got %d", store.Count())
	}

	c.sendClosing("quit")
	c.waitFor(Farewell)
	c.waitClosed()
	<-done

	if store.Count() != 0 {
		t.Fatalf("expected session to end on disconnect, got %d", store.Count())
	}
}

func TestLineSessionWelcomeArt(t *testing.T) {
	h, _ := newLineHandler(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "welcome.ans"), []byte("\x1b[35m** {{BBSNAME}} **\x1b[0m\r\n"), 0o644); err != nil {
		t.Fatalf("write art: %v", err)
	}
	h.UseArt(ansi.NewLoader(dir))

	serverSide, clientSide := net.Pipe()
	go h.Serve(context.Background(), serverSide, session.KindTelnet, "pipe")
	c := newClient(t, clientSide)

	out := c.waitFor("guest> ")
	if !strings.Contains(out, "** Dusk BBS **") {
		t.Fatalf("expected welcome art, got %q", out)
	}
	if !strings.Contains(out, "Type HELP for a list of commands.") {
		t.Fatalf("expected help hint after art, got %q", out)
	}
}

func TestLineSessionPromptFollowsLogin(t *testing.T) {
	c, _, _ := startSession(t, session.KindSSH)
	c.waitFor("guest> ")

	c.send("REGISTER bob pw")
	c.waitFor("guest> ")

	c.send("LOGIN bob pw")
	out := c.waitFor("bob> ")
	if !strings.Contains(out, "Welcome, bob!") {
		t.Fatalf("expected welcome, got %q", out)
	}
	if !strings.Contains(out, "\r\n") {
		t.Fatalf("expected CRLF line endings, got %q", out)
	}
}

func TestLineSessionQuitInsideGameLeavesGame(t *testing.T) {
	c, _, _ := startSession(t, session.KindTelnet)
	c.waitFor("guest> ")

	c.send("REGISTER carol pw")
	c.waitFor("guest> ")
	c.send("LOGIN carol pw")
	c.waitFor("carol> ")

	c.send("GAME NUMBERGUESS START")
	c.waitFor("carol> ")

	c.send("QUIT")
	c.waitFor("You have left NUMBERGUESS.")

	c.send("WHO")
	out := c.waitFor("carol> ")
	if !strings.Contains(out, "carol") {
		t.Fatalf("expected connection to stay open, got %q", out)
	}
}

func TestLineSessionKicked(t *testing.T) {
	c, store, done := startSession(t, session.KindTelnet)
	c.waitFor("guest> ")

	sessions := store.List()
	if len(sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions))
	}
	store.Kick(sessions[0].ID)

	c.sendClosing("WHO")
	c.waitFor(command.SessionInvalidReply)
	c.waitClosed()
	<-done
}

func TestTelnetConnFiltersCommands(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()
	tc := NewTelnetConn(serverSide)
	defer tc.Close()

	input := []byte{IAC, DONT, OptEcho, 'h'}
	input = append(input, IAC, SB, OptTType, 0)
	input = append(input, "xterm"...)
	input = append(input, IAC, SE, 'i', IAC, IAC)
	go clientSide.Write(input)

	got := make([]byte, 3)
	if _, err := io.ReadFull(tc, got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, []byte{'h', 'i', IAC}) {
		t.Fatalf("unexpected data %v", got)
	}
	if tc.TermType() != "xterm" {
		t.Fatalf("expected term type xterm, got %q", tc.TermType())
	}
}

func TestTelnetConnEscapesIAC(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()
	tc := NewTelnetConn(serverSide)
	defer tc.Close()

	go tc.Write([]byte{'a', IAC, 'b'})

	got := make([]byte, 4)
	if _, err := io.ReadFull(clientSide, got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, []byte{'a', IAC, IAC, 'b'}) {
		t.Fatalf("unexpected bytes %v", got)
	}
}

func TestListenerClose(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	accepted := make(chan struct{}, 1)
	l := NewListener("test", 0, func(conn net.Conn) {
		conn.Close()
		accepted <- struct{}{}
	}, zap.NewNop())

	errc := make(chan error, 1)
	go func() { errc <- l.Serve(ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()

	select {
	case <-accepted:
	case <-time.After(5 * time.Second):
		t.Fatalf("handler was not called")
	}

	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return after Close")
	}
}

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/ansi"
	"github.com/notepid/dusk_bbs/internal/command"
	"github.com/notepid/dusk_bbs/internal/db"
	"github.com/notepid/dusk_bbs/internal/session"
	"github.com/notepid/dusk_bbs/internal/terminal"
)

// Fixed transport replies.
const (
	Farewell     = "Goodbye! Come back soon."
	GenericError = "An error occurred processing your command."
)

// MaxLineLen caps a single input line.
const MaxLineLen = command.MaxBodyLen + 256

// SettingsSource supplies the BBS identity for the banner.
type SettingsSource interface {
	GetBBSSettings(ctx context.Context) (*db.BBSSettings, error)
}

// LineHandler runs the line-oriented session shared by telnet and SSH.
type LineHandler struct {
	dispatcher *command.Dispatcher
	sessions   *session.Store
	settings   SettingsSource
	art        *ansi.Loader
	log        *zap.Logger
}

// NewLineHandler creates a LineHandler.
func NewLineHandler(d *command.Dispatcher, sessions *session.Store, settings SettingsSource, log *zap.Logger) *LineHandler {
	return &LineHandler{dispatcher: d, sessions: sessions, settings: settings, log: log}
}

// UseArt makes the banner show a "welcome" art file found by l, when present.
func (h *LineHandler) UseArt(l *ansi.Loader) {
	h.art = l
}

// TelnetHandler returns a ConnectionHandler that negotiates telnet options
// and serves a line session.
func (h *LineHandler) TelnetHandler(ctx context.Context) ConnectionHandler {
	return func(conn net.Conn) {
		tc := NewTelnetConn(conn)
		if err := tc.Negotiate(); err != nil {
			h.log.Debug("telnet negotiation failed", zap.Error(err))
			tc.Close()
			return
		}
		h.Serve(ctx, tc, session.KindTelnet, conn.RemoteAddr().String())
	}
}

// SSHHandler returns an SSHHandler serving a line session.
func (h *LineHandler) SSHHandler(ctx context.Context) SSHHandler {
	return func(rwc io.ReadWriteCloser, remoteAddr string) {
		h.Serve(ctx, rwc, session.KindSSH, remoteAddr)
	}
}

// Serve runs one connection until the client quits, disconnects or is kicked.
// The connection is closed and the session ended on return.
func (h *LineHandler) Serve(ctx context.Context, rwc io.ReadWriteCloser, kind session.Kind, remoteAddr string) {
	term := terminal.New(rwc, kind.Colored())
	defer term.Close()

	sess := h.sessions.Create(kind)
	defer h.sessions.End(sess.ID)

	log := h.log.With(
		zap.String("session", sess.ID),
		zap.String("kind", string(kind)),
		zap.String("remote", remoteAddr),
	)
	log.Info("connection opened")
	defer log.Info("connection closed")

	if err := term.SendText(h.banner(ctx, term)); err != nil {
		return
	}

	for {
		if err := term.Send(prompt(sess)); err != nil {
			return
		}

		line, err := term.GetLine(MaxLineLen)
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)

		if strings.EqualFold(line, "QUIT") && !inGame(sess) {
			_ = term.SendLn(Farewell)
			return
		}

		reply, err := h.execute(ctx, sess.ID, line, log)
		switch {
		case errors.Is(err, command.ErrSessionInvalid):
			log.Info("session no longer valid")
			_ = term.SendLn(command.SessionInvalidReply)
			return
		case err != nil:
			err = term.SendLn(GenericError)
		case reply != "":
			err = term.SendText(reply)
		}
		if err != nil {
			return
		}
	}
}

// execute runs one line, turning a panic into an error so the connection
// stays open.
func (h *LineHandler) execute(ctx context.Context, sessionID, line string, log *zap.Logger) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("command panicked", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("command panicked: %v", r)
		}
	}()
	return h.dispatcher.Execute(ctx, sessionID, line)
}

func (h *LineHandler) banner(ctx context.Context, term *terminal.Terminal) string {
	name, sysop, tagline := "Dusk BBS", "", ""
	s, err := h.settings.GetBBSSettings(ctx)
	if err != nil {
		h.log.Warn("banner settings unavailable", zap.Error(err))
	} else {
		name, sysop, tagline = s.Name, s.Sysop, s.Tagline
	}

	var b strings.Builder
	if term.ANSIEnabled {
		b.WriteString(terminal.ClearScreen())
	}
	if art := h.welcomeArt(term); art != nil {
		b.WriteString(art.Render(map[string]string{
			"BBSNAME": name,
			"SYSOP":   sysop,
			"TAGLINE": tagline,
		}, term.ANSIEnabled))
		if !strings.HasSuffix(b.String(), "\n") {
			b.WriteString("\n")
		}
	} else {
		rule := strings.Repeat("=", max(len(name), len(tagline))+4)
		b.WriteString(term.Paint("blue", rule) + "\n")
		b.WriteString("  " + term.Paint("brightcyan", name) + "\n")
		if tagline != "" {
			b.WriteString("  " + term.Paint("gray", tagline) + "\n")
		}
		b.WriteString(term.Paint("blue", rule) + "\n")
	}
	b.WriteString("Type HELP for a list of commands.")
	return b.String()
}

func (h *LineHandler) welcomeArt(term *terminal.Terminal) *ansi.Art {
	if h.art == nil {
		return nil
	}
	art, err := h.art.Find("welcome", term.ANSIEnabled)
	if err != nil {
		if !errors.Is(err, ansi.ErrNotFound) {
			h.log.Warn("welcome art unavailable", zap.Error(err))
		}
		return nil
	}
	return art
}

func prompt(sess *session.Session) string {
	sess.Lock()
	defer sess.Unlock()
	return command.Prompt(sess)
}

func inGame(sess *session.Session) bool {
	sess.Lock()
	defer sess.Unlock()
	return sess.InGame()
}

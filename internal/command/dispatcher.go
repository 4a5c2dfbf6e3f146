package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/broadcast"
	"github.com/notepid/dusk_bbs/internal/filearea"
	"github.com/notepid/dusk_bbs/internal/game"
	"github.com/notepid/dusk_bbs/internal/mail"
	"github.com/notepid/dusk_bbs/internal/message"
	"github.com/notepid/dusk_bbs/internal/prefs"
	"github.com/notepid/dusk_bbs/internal/session"
	"github.com/notepid/dusk_bbs/internal/terminal"
	"github.com/notepid/dusk_bbs/internal/user"
)

// ErrSessionInvalid is returned when a session id is unknown or was kicked.
var ErrSessionInvalid = errors.New("session invalid, please reconnect")

// SessionInvalidReply is what transports show for ErrSessionInvalid.
const SessionInvalidReply = "Your session is no longer valid. Please reconnect."

// TimeFormat is the layout for timestamps in responses.
const TimeFormat = "2006-01-02 15:04"

const serverError = "A server error occurred."

// access is the minimum standing a command requires.
type access int

const (
	anyone access = iota
	member
	sysop
)

type handler func(ctx context.Context, c *call) string

type command struct {
	name    string
	handler handler
	access  access
}

// call carries one parsed input line through a handler.
type call struct {
	sess *session.Session
	name string
	args []string
	rest string // raw text after the command token
}

// Deps are the collaborators a Dispatcher works against.
type Deps struct {
	Sessions *session.Store
	Queue    *broadcast.Queue
	Users    *user.Repo
	Boards   *message.Repo
	Mail     *mail.Repo
	Files    *filearea.Repo
	Prefs    *prefs.Repo
	Games    *game.Registry
}

// Dispatcher executes command lines against a session.
type Dispatcher struct {
	Deps
	log      *zap.Logger
	commands map[string]*command
}

// New creates a Dispatcher with the full command table.
func New(deps Deps, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{Deps: deps, log: log, commands: make(map[string]*command)}

	register := func(name string, a access, h handler) {
		d.commands[name] = &command{name: name, handler: h, access: a}
	}

	// Accounts
	register("REGISTER", anyone, d.cmdRegister)
	register("LOGIN", anyone, d.cmdLogin)
	register("LOGOUT", anyone, d.cmdLogout)
	register("WHO", anyone, d.cmdWho)
	register("SETCOLOR", member, d.cmdSetColor)
	register("HELP", anyone, d.cmdHelp)

	// Boards
	register("LOOK", anyone, d.cmdLook)
	register("SAY", member, d.cmdSay)
	register("LISTBOARDS", anyone, d.cmdListBoards)
	register("JOINBOARD", anyone, d.cmdJoinBoard)

	// Mail
	register("SENDMAIL", member, d.cmdSendMail)
	register("LISTMAIL", member, d.cmdListMail)
	register("READMAIL", member, d.cmdReadMail)
	register("DELETEMAIL", member, d.cmdDeleteMail)

	// Files
	register("LISTFILEAREAS", anyone, d.cmdListFileAreas)
	register("LISTFILES", anyone, d.cmdListFiles)
	register("UPLOADINFO", sysop, d.cmdUploadInfo)
	register("FILEDESC", member, d.cmdFileDesc)
	register("DOWNLOADINFO", member, d.cmdDownloadInfo)

	// Games
	register("GAME", anyone, d.cmdGame)

	// Sysop
	register("KICK", sysop, d.cmdKick)
	register("BROADCAST", sysop, d.cmdBroadcast)
	register("EDITMESSAGE", sysop, d.cmdEditMessage)
	register("DELETEMESSAGE", sysop, d.cmdDeleteMessage)

	return d
}

// Execute runs one input line for a session and returns the response text.
// Lines for the same session run one at a time.
func (d *Dispatcher) Execute(ctx context.Context, sessionID, line string) (string, error) {
	sess, ok := d.Sessions.Get(sessionID)
	if !ok {
		return "", ErrSessionInvalid
	}

	sess.Lock()
	defer sess.Unlock()

	// A KICK may have landed while this line waited for the lock.
	if !d.Sessions.Contains(sess) {
		return "", ErrSessionInvalid
	}

	if sess.InGame() {
		return d.routeGame(sess, line), nil
	}

	name, args := Parse(line)
	if name == "" {
		return "", nil
	}

	c := &call{sess: sess, name: name, args: args, rest: Rest(line)}
	return d.withBroadcasts(sess, d.dispatch(ctx, c)), nil
}

func (d *Dispatcher) dispatch(ctx context.Context, c *call) string {
	cmd, ok := d.commands[c.name]
	if !ok {
		return fmt.Sprintf("Unknown command: %s. Type HELP for a list of commands.", c.name)
	}

	switch cmd.access {
	case member:
		if !c.sess.LoggedIn() {
			return fmt.Sprintf("You must be logged in to use %s.", cmd.name)
		}
	case sysop:
		if !c.sess.IsSysop() {
			return "Access denied."
		}
	}
	return cmd.handler(ctx, c)
}

// routeGame hands raw input to the active game. quit and exit always leave.
func (d *Dispatcher) routeGame(sess *session.Session, line string) string {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "quit", "exit":
		name := sess.GameName
		sess.EndGame()
		return fmt.Sprintf("You have left %s.", name)
	}

	reply, done := sess.Game.Handle(line)
	if done {
		sess.EndGame()
		reply += "\nGame over. You are back at the BBS prompt."
	}
	return reply
}

// withBroadcasts prepends broadcasts the session has not seen yet.
func (d *Dispatcher) withBroadcasts(sess *session.Session, reply string) string {
	unseen, last := d.Queue.Since(sess.LastBroadcast)
	sess.LastBroadcast = last
	if len(unseen) == 0 {
		return reply
	}

	lines := make([]string, 0, len(unseen)+1)
	for _, e := range unseen {
		lines = append(lines, e.String())
	}
	lines = append(lines, reply)
	return strings.Join(lines, "\n")
}

// fail logs an unexpected persistence error and returns the generic reply.
func (d *Dispatcher) fail(c *call, err error) string {
	d.log.Error("command failed",
		zap.String("command", c.name),
		zap.String("session", c.sess.ID),
		zap.String("user", c.sess.Username()),
		zap.Error(err),
	)
	return serverError
}

// paint colours text for ANSI transports using the session's preferences.
func paint(sess *session.Session, element, text string) string {
	if !sess.Kind.Colored() {
		return text
	}
	return terminal.Paint(sess.Color(element), text)
}

// Prompt returns the prompt for a session, coloured for ANSI transports.
func Prompt(sess *session.Session) string {
	return paint(sess, prefs.ElementPrompt, sess.Username()+"> ")
}

package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/prefs"
	"github.com/notepid/dusk_bbs/internal/session"
	"github.com/notepid/dusk_bbs/internal/user"
)

func (d *Dispatcher) cmdRegister(ctx context.Context, c *call) string {
	if len(c.args) != 2 {
		return "Usage: REGISTER <username> <password>"
	}
	username, password := c.args[0], c.args[1]
	if err := validateUsername(username); err != nil {
		return "Invalid username: " + err.Error() + "."
	}
	if err := validatePassword(password); err != nil {
		return "Invalid password: " + err.Error() + "."
	}

	if _, err := d.Users.Create(ctx, username, password); err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			return "Username already taken."
		}
		return d.fail(c, err)
	}
	d.log.Info("account registered", zap.String("user", username), zap.String("session", c.sess.ID))
	return "Registration successful."
}

func (d *Dispatcher) cmdLogin(ctx context.Context, c *call) string {
	if len(c.args) != 2 {
		return "Usage: LOGIN <username> <password>"
	}

	u, err := d.Users.Authenticate(ctx, c.args[0], c.args[1])
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			return "Invalid username or password."
		}
		return d.fail(c, err)
	}

	colors, err := d.Prefs.Load(ctx, u.ID)
	if err != nil {
		d.log.Warn("failed to load preferences, using defaults", zap.Int("user_id", u.ID), zap.Error(err))
		colors = prefs.Defaults()
	}

	c.sess.EndGame()
	c.sess.Login(u, colors)
	d.resetBoard(c.sess)

	unread, err := d.Mail.CountUnread(ctx, u.ID)
	if err != nil {
		d.log.Warn("failed to count unread mail", zap.Int("user_id", u.ID), zap.Error(err))
	}
	d.log.Info("user logged in",
		zap.String("user", u.Username),
		zap.String("session", c.sess.ID),
		zap.String("kind", string(c.sess.Kind)),
	)

	var b strings.Builder
	fmt.Fprintf(&b, "Welcome, %s! You are on board %s.", u.Username, c.sess.BoardName)
	if u.IsSysop() {
		b.WriteString(" You have sysop access.")
	}
	switch unread {
	case 0:
		b.WriteString("\nYou have no unread mail.")
	case 1:
		b.WriteString("\nYou have 1 unread message. Type LISTMAIL to see it.")
	default:
		fmt.Fprintf(&b, "\nYou have %d unread messages. Type LISTMAIL to see them.", unread)
	}
	return b.String()
}

func (d *Dispatcher) cmdLogout(ctx context.Context, c *call) string {
	if c.sess.LoggedIn() {
		d.log.Info("user logged out", zap.String("user", c.sess.Username()), zap.String("session", c.sess.ID))
	}
	c.sess.Logout()
	d.resetBoard(c.sess)
	return "You have been logged out."
}

func (d *Dispatcher) resetBoard(sess *session.Session) {
	sess.BoardID, sess.BoardName = d.Sessions.DefaultBoard()
}

func (d *Dispatcher) cmdWho(ctx context.Context, c *call) string {
	names := d.Sessions.LoggedInUsernames()
	if len(names) == 0 {
		return "No users are logged in."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Users online (%d):", len(names))
	for _, n := range names {
		b.WriteString("\n  " + paint(c.sess, prefs.ElementUsername, n))
	}
	return b.String()
}

func (d *Dispatcher) cmdSetColor(ctx context.Context, c *call) string {
	if len(c.args) != 2 {
		return "Usage: SETCOLOR <element> <color>. Type HELP SETCOLOR for choices."
	}
	element, color := strings.ToLower(c.args[0]), strings.ToLower(c.args[1])
	if !prefs.ValidElement(element) {
		return "Invalid element. Choose one of: " + strings.Join(prefs.Elements, ", ") + "."
	}
	if !prefs.ValidColor(color) {
		return "Invalid color. Choose one of: " + strings.Join(prefs.Palette, ", ") + "."
	}

	if err := d.Prefs.Set(ctx, c.sess.Identity().UserID, element, color); err != nil {
		return d.fail(c, err)
	}
	c.sess.Colors[element] = color
	return fmt.Sprintf("%s color set to %s.", element, paint(c.sess, element, color))
}

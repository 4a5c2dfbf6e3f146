package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/message"
	"github.com/notepid/dusk_bbs/internal/session"
)

func (d *Dispatcher) cmdKick(ctx context.Context, c *call) string {
	if len(c.args) != 1 {
		return "Usage: KICK <username>"
	}
	target := c.args[0]

	var victims []*session.Session
	self := false
	for _, s := range d.Sessions.FindLoggedIn(target) {
		if s.ID == c.sess.ID {
			self = true
			continue
		}
		victims = append(victims, s)
	}
	if len(victims) == 0 {
		if self {
			return "You cannot kick yourself."
		}
		return "User not found or not logged in."
	}

	kicked := 0
	for _, s := range victims {
		if d.Sessions.Kick(s.ID) {
			kicked++
		}
	}
	d.log.Info("user kicked",
		zap.String("user", target),
		zap.Int("sessions", kicked),
		zap.String("by", c.sess.Username()),
	)
	return fmt.Sprintf("Kicked %s (%d %s).", target, kicked, plural(kicked, "session", "sessions"))
}

func (d *Dispatcher) cmdBroadcast(ctx context.Context, c *call) string {
	text := sanitize(strings.TrimSpace(c.rest))
	if text == "" {
		return "Broadcast message cannot be empty."
	}
	if err := validateLength(text, "broadcast", MaxBodyLen); err != nil {
		return "Invalid broadcast: " + err.Error() + "."
	}

	d.Queue.Append(text)
	d.log.Info("broadcast sent", zap.String("by", c.sess.Username()), zap.String("text", text))
	return "Broadcast sent."
}

func (d *Dispatcher) cmdEditMessage(ctx context.Context, c *call) string {
	fields, rest := Fields(c.rest, 1)
	if len(fields) != 1 {
		return "Usage: EDITMESSAGE <id> <text>"
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return "Invalid message id."
	}
	text := sanitize(strings.TrimSpace(rest))
	if text == "" {
		return "Usage: EDITMESSAGE <id> <text>"
	}
	if err := validateLength(text, "message", MaxBodyLen); err != nil {
		return "Invalid message: " + err.Error() + "."
	}

	if err := d.Boards.UpdateBody(ctx, id, text); err != nil {
		if errors.Is(err, message.ErrPostNotFound) {
			return "Message not found."
		}
		return d.fail(c, err)
	}
	d.log.Info("post edited", zap.Int("post_id", id), zap.String("by", c.sess.Username()))
	return fmt.Sprintf("Message %d updated.", id)
}

func (d *Dispatcher) cmdDeleteMessage(ctx context.Context, c *call) string {
	if len(c.args) != 1 {
		return "Usage: DELETEMESSAGE <id>"
	}
	id, err := strconv.Atoi(c.args[0])
	if err != nil {
		return "Invalid message id."
	}

	if err := d.Boards.DeletePost(ctx, id); err != nil {
		if errors.Is(err, message.ErrPostNotFound) {
			return "Message not found."
		}
		return d.fail(c, err)
	}
	d.log.Info("post deleted", zap.Int("post_id", id), zap.String("by", c.sess.Username()))
	return fmt.Sprintf("Message %d deleted.", id)
}

package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/notepid/dusk_bbs/internal/message"
	"github.com/notepid/dusk_bbs/internal/prefs"
)

func (d *Dispatcher) cmdLook(ctx context.Context, c *call) string {
	posts, err := d.Boards.RecentPosts(ctx, c.sess.BoardID, message.RecentLimit)
	if err != nil {
		return d.fail(c, err)
	}
	if len(posts) == 0 {
		return fmt.Sprintf("No messages on board %s yet.", c.sess.BoardName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent messages on %s:", c.sess.BoardName)
	for _, p := range posts {
		fmt.Fprintf(&b, "\n%s %s: %s",
			paint(c.sess, prefs.ElementTimestamp, "["+p.Timestamp.Local().Format(TimeFormat)+"]"),
			paint(c.sess, prefs.ElementUsername, p.Username),
			p.Body,
		)
	}
	return b.String()
}

func (d *Dispatcher) cmdSay(ctx context.Context, c *call) string {
	text := sanitize(strings.TrimSpace(c.rest))
	if text == "" {
		return "Message cannot be empty."
	}
	if err := validateLength(text, "message", MaxBodyLen); err != nil {
		return "Message " + strings.TrimPrefix(err.Error(), "message ") + "."
	}

	if _, err := d.Boards.CreatePost(ctx, c.sess.BoardID, c.sess.Identity().UserID, text); err != nil {
		return d.fail(c, err)
	}
	return fmt.Sprintf("Message posted to %s.", c.sess.BoardName)
}

func (d *Dispatcher) cmdListBoards(ctx context.Context, c *call) string {
	boards, err := d.Boards.ListBoards(ctx)
	if err != nil {
		return d.fail(c, err)
	}
	if len(boards) == 0 {
		return "No boards available."
	}

	var b strings.Builder
	b.WriteString("Boards:")
	for _, board := range boards {
		marker := " "
		if board.ID == c.sess.BoardID {
			marker = "*"
		}
		fmt.Fprintf(&b, "\n%s [%d] %s", marker, board.ID, board.Name)
		if board.Description != "" {
			b.WriteString(" - " + board.Description)
		}
	}
	return b.String()
}

func (d *Dispatcher) cmdJoinBoard(ctx context.Context, c *call) string {
	ref := strings.TrimSpace(c.rest)
	if ref == "" {
		return "Usage: JOINBOARD <id|name>"
	}
	if len(ref) > MaxBoardRefLen {
		return "Board not found."
	}

	board, err := d.Boards.FindBoard(ctx, ref)
	if err != nil {
		if errors.Is(err, message.ErrBoardNotFound) {
			return "Board not found."
		}
		return d.fail(c, err)
	}
	c.sess.BoardID, c.sess.BoardName = board.ID, board.Name
	return fmt.Sprintf("Joined board %s.", board.Name)
}

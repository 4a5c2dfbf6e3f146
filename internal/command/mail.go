package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/notepid/dusk_bbs/internal/mail"
	"github.com/notepid/dusk_bbs/internal/user"
)

const sendMailUsage = "Usage: SENDMAIL <recipient> <subject>///<body>"

func (d *Dispatcher) cmdSendMail(ctx context.Context, c *call) string {
	fields, rest := Fields(c.rest, 1)
	if len(fields) != 1 {
		return sendMailUsage
	}
	subject, body, found := CutSeparator(rest)
	subject = sanitize(strings.TrimSpace(subject))
	body = sanitize(strings.TrimSpace(body))
	if !found || subject == "" {
		return sendMailUsage
	}
	if err := validateLength(subject, "subject", MaxSubjectLen); err != nil {
		return "Invalid mail: " + err.Error() + "."
	}
	if err := validateLength(body, "body", MaxBodyLen); err != nil {
		return "Invalid mail: " + err.Error() + "."
	}

	recipient, err := d.Users.GetByUsername(ctx, fields[0])
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "Recipient not found."
		}
		return d.fail(c, err)
	}

	if _, err := d.Mail.Send(ctx, c.sess.Identity().UserID, recipient.ID, subject, body); err != nil {
		return d.fail(c, err)
	}
	return fmt.Sprintf("Mail sent to %s.", recipient.Username)
}

func (d *Dispatcher) cmdListMail(ctx context.Context, c *call) string {
	msgs, err := d.Mail.ListForRecipient(ctx, c.sess.Identity().UserID)
	if err != nil {
		return d.fail(c, err)
	}
	if len(msgs) == 0 {
		return "You have no mail."
	}

	var b strings.Builder
	b.WriteString("Your mail (* = unread):")
	for _, m := range msgs {
		marker := " "
		if !m.Read {
			marker = "*"
		}
		fmt.Fprintf(&b, "\n%s [%d] %s  From: %s  Subject: %s",
			marker, m.ID, m.Timestamp.Local().Format(TimeFormat), m.SenderName, m.Subject)
	}
	return b.String()
}

func (d *Dispatcher) cmdReadMail(ctx context.Context, c *call) string {
	id, ok := mailID(c)
	if !ok {
		return "Usage: READMAIL <id>"
	}

	m, err := d.Mail.GetForRecipient(ctx, id, c.sess.Identity().UserID)
	if err != nil {
		if errors.Is(err, mail.ErrNotFound) {
			return "Message not found or access denied."
		}
		return d.fail(c, err)
	}
	if !m.Read {
		if err := d.Mail.MarkRead(ctx, m.ID); err != nil {
			return d.fail(c, err)
		}
	}

	body := m.Body
	if body == "" {
		body = "(no body)"
	}
	return fmt.Sprintf("From: %s\nDate: %s\nSubject: %s\n\n%s",
		m.SenderName, m.Timestamp.Local().Format(TimeFormat), m.Subject, body)
}

func (d *Dispatcher) cmdDeleteMail(ctx context.Context, c *call) string {
	id, ok := mailID(c)
	if !ok {
		return "Usage: DELETEMAIL <id>"
	}

	if err := d.Mail.Delete(ctx, id, c.sess.Identity().UserID); err != nil {
		if errors.Is(err, mail.ErrNotFound) {
			return "Message not found or access denied."
		}
		return d.fail(c, err)
	}
	return "Message deleted."
}

func mailID(c *call) (int, bool) {
	if len(c.args) != 1 {
		return 0, false
	}
	id, err := strconv.Atoi(c.args[0])
	return id, err == nil
}

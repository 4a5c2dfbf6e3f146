// Package mail stores private messages between accounts.
package mail

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a message does not exist or is not addressed
// to the caller.
var ErrNotFound = errors.New("mail not found")

// Mail is a private message.
type Mail struct {
	ID          int
	SenderID    int
	SenderName  string // joined from users table
	RecipientID int
	Subject     string
	Body        string
	Timestamp   time.Time
	Read        bool
}

// Repo handles database operations for private messages.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a new mail repository.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Send stores a new unread message.
func (r *Repo) Send(ctx context.Context, senderID, recipientID int, subject, body string) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO private_messages (sender_id, recipient_id, subject, body, timestamp, is_read)
		VALUES (?, ?, ?, ?, ?, 0)
	`, senderID, recipientID, subject, body, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("send mail: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// ListForRecipient returns every message addressed to a user, newest first.
// Bodies are not loaded.
func (r *Repo) ListForRecipient(ctx context.Context, recipientID int) ([]*Mail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.sender_id, COALESCE(u.username, 'Unknown'), p.recipient_id,
		       p.subject, p.timestamp, p.is_read
		FROM private_messages p
		LEFT JOIN users u ON u.id = p.sender_id
		WHERE p.recipient_id = ?
		ORDER BY p.timestamp DESC, p.id DESC
	`, recipientID)
	if err != nil {
		return nil, fmt.Errorf("list mail: %w", err)
	}
	defer rows.Close()

	var out []*Mail
	for rows.Next() {
		m := &Mail{}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.SenderName, &m.RecipientID,
			&m.Subject, &m.Timestamp, &m.Read); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetForRecipient loads a full message only if it is addressed to recipientID.
func (r *Repo) GetForRecipient(ctx context.Context, id, recipientID int) (*Mail, error) {
	m := &Mail{}
	err := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.sender_id, COALESCE(u.username, 'Unknown'), p.recipient_id,
		       p.subject, p.body, p.timestamp, p.is_read
		FROM private_messages p
		LEFT JOIN users u ON u.id = p.sender_id
		WHERE p.id = ? AND p.recipient_id = ?
	`, id, recipientID).Scan(&m.ID, &m.SenderID, &m.SenderName, &m.RecipientID,
		&m.Subject, &m.Body, &m.Timestamp, &m.Read)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get mail %d: %w", id, err)
	}
	return m, nil
}

// MarkRead sets the read flag. Marking an already-read message is a no-op.
func (r *Repo) MarkRead(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE private_messages SET is_read = 1 WHERE id = ? AND is_read = 0", id); err != nil {
		return fmt.Errorf("mark mail %d read: %w", id, err)
	}
	return nil
}

// Delete removes a message, but only when it is addressed to recipientID.
func (r *Repo) Delete(ctx context.Context, id, recipientID int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM private_messages WHERE id = ? AND recipient_id = ?", id, recipientID)
	if err != nil {
		return fmt.Errorf("delete mail %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnread returns how many unread messages a user has.
func (r *Repo) CountUnread(ctx context.Context, recipientID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM private_messages WHERE recipient_id = ? AND is_read = 0", recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread mail: %w", err)
	}
	return count, nil
}

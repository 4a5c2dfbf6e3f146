package mail

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/db"
)

func setup(t *testing.T) (*Repo, int, int) {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "bbs.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return NewRepo(d.DB), addUser(t, d.DB, "alice"), addUser(t, d.DB, "bob")
}

func addUser(t *testing.T, sqlDB *sql.DB, name string) int {
	t.Helper()
	res, err := sqlDB.Exec(`INSERT INTO users (username, password_hash, registration_date) VALUES (?, 'x', ?)`, name, time.Now())
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	id, _ := res.LastInsertId()
	return int(id)
}

func TestSendAndList(t *testing.T) {
	ctx := context.Background()
	r, alice, bob := setup(t)

	if _, err := r.Send(ctx, alice, bob, "first", "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := r.Send(ctx, alice, bob, "second", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}

	list, err := r.ListForRecipient(ctx, bob)
	if err != nil {
		t.Fatalf("ListForRecipient: %v", err)
	}
	if len(list) != 2 || list[0].Subject != "second" {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if list[0].SenderName != "alice" || list[0].Read {
		t.Fatalf("unexpected entry: %+v", list[0])
	}

	empty, err := r.ListForRecipient(ctx, alice)
	if err != nil {
		t.Fatalf("ListForRecipient: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("alice should have no mail, got %d", len(empty))
	}
}

func TestReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r, alice, bob := setup(t)

	id, err := r.Send(ctx, alice, bob, "hi", "body")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n, _ := r.CountUnread(ctx, bob); n != 1 {
		t.Fatalf("expected 1 unread, got %d", n)
	}

	for i := 0; i < 2; i++ {
		m, err := r.GetForRecipient(ctx, id, bob)
		if err != nil {
			t.Fatalf("GetForRecipient: %v", err)
		}
		if m.Body != "body" {
			t.Fatalf("unexpected body %q", m.Body)
		}
		if err := r.MarkRead(ctx, id); err != nil {
			t.Fatalf("MarkRead #%d: %v", i+1, err)
		}
	}

	m, _ := r.GetForRecipient(ctx, id, bob)
	if !m.Read {
		t.Fatalf("expected message to be read")
	}
	if n, _ := r.CountUnread(ctx, bob); n != 0 {
		t.Fatalf("expected 0 unread, got %d", n)
	}
}

func TestAccessLimitedToRecipient(t *testing.T) {
	ctx := context.Background()
	r, alice, bob := setup(t)

	id, err := r.Send(ctx, alice, bob, "private", "secret")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if _, err := r.GetForRecipient(ctx, id, alice); !errors.Is(err, ErrNotFound) {
		t.Fatalf("sender must not read recipient's copy, got %v", err)
	}
	if err := r.Delete(ctx, id, alice); !errors.Is(err, ErrNotFound) {
		t.Fatalf("sender must not delete, got %v", err)
	}
	if err := r.Delete(ctx, id, bob); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.GetForRecipient(ctx, id, bob); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted message to be gone, got %v", err)
	}
}

package user

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/notepid/dusk_bbs/internal/db"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "bbs.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	r := NewRepo(d.DB)
	r.HashCost = bcrypt.MinCost
	return r
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	u, err := r.Create(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Role != RoleUser || u.PasswordHash == "pw1" {
		t.Fatalf("unexpected user: %+v", u)
	}

	got, err := r.Authenticate(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("expected id %d, got %d", u.ID, got.ID)
	}
	if got.RegistrationDate.IsZero() {
		t.Fatalf("expected registration date to round-trip")
	}
}

func TestCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	if _, err := r.Create(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := r.Create(ctx, "alice", "other")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	// Usernames are case-sensitive.
	if _, err := r.Create(ctx, "Alice", "pw"); err != nil {
		t.Fatalf("expected Alice to be distinct from alice: %v", err)
	}
}

func TestAuthenticateDoesNotLeakWhichPartFailed(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	if _, err := r.Create(ctx, "bob", "secret"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, errWrongPw := r.Authenticate(ctx, "bob", "nope")
	_, errNoUser := r.Authenticate(ctx, "carol", "secret")
	if !errors.Is(errWrongPw, ErrInvalidCredentials) || !errors.Is(errNoUser, ErrInvalidCredentials) {
		t.Fatalf("expected both to be ErrInvalidCredentials: %v / %v", errWrongPw, errNoUser)
	}
}

func TestSetRoleAndList(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	u, err := r.Create(ctx, "root", "pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.SetRole(ctx, u.ID, RoleSysop); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	if err := r.SetRole(ctx, u.ID, "king"); err == nil {
		t.Fatalf("expected invalid role to fail")
	}
	if err := r.SetRole(ctx, 999, RoleSysop); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}

	got, err := r.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.IsSysop() {
		t.Fatalf("expected sysop role, got %q", got.Role)
	}

	users, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 || users[0].Username != "root" {
		t.Fatalf("unexpected list: %+v", users)
	}
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	u, err := r.Create(ctx, "dave", "old")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.UpdatePassword(ctx, u.ID, "new"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if _, err := r.Authenticate(ctx, "dave", "old"); err == nil {
		t.Fatalf("old password should no longer work")
	}
	if _, err := r.Authenticate(ctx, "dave", "new"); err != nil {
		t.Fatalf("new password should work: %v", err)
	}
}

package message

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/db"
)

func newTestRepo(t *testing.T) (*Repo, *sql.DB) {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "bbs.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return NewRepo(d.DB), d.DB
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

func TestFindBoard(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)

	general, err := r.BoardByName(ctx, GeneralBoard)
	if err != nil {
		t.Fatalf("BoardByName: %v", err)
	}

	id, err := r.CreateBoard(ctx, "Retro", "old machines")
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}

	tests := []struct {
		ref    string
		wantID int
	}{
		{"General", general.ID},
		{fmt.Sprint(general.ID), general.ID},
		{"Retro", id},
		{fmt.Sprint(id), id},
	}
	for _, tt := range tests {
		b, err := r.FindBoard(ctx, tt.ref)
		if err != nil {
			t.Fatalf("FindBoard(%q): %v", tt.ref, err)
		}
		if b.ID != tt.wantID {
			t.Fatalf("FindBoard(%q) = %d, want %d", tt.ref, b.ID, tt.wantID)
		}
	}

	if _, err := r.FindBoard(ctx, "general"); !errors.Is(err, ErrBoardNotFound) {
		t.Fatalf("expected exact name match only, got %v", err)
	}
	if _, err := r.FindBoard(ctx, "999"); !errors.Is(err, ErrBoardNotFound) {
		t.Fatalf("expected ErrBoardNotFound, got %v", err)
	}

	boards, err := r.ListBoards(ctx)
	if err != nil {
		t.Fatalf("ListBoards: %v", err)
	}
	if len(boards) != 2 || boards[0].Name != "General" {
		t.Fatalf("unexpected boards: %+v", boards)
	}
}

func TestRecentPostsCapAndOrder(t *testing.T) {
	ctx := context.Background()
	r, sqlDB := newTestRepo(t)
	uid := addUser(t, sqlDB, "alice")

	general, err := r.BoardByName(ctx, GeneralBoard)
	if err != nil {
		t.Fatalf("BoardByName: %v", err)
	}
	other, err := r.CreateBoard(ctx, "Other", "")
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}

	for i := 0; i < 12; i++ {
		if _, err := r.CreatePost(ctx, general.ID, uid, fmt.Sprintf("post %d", i)); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}
	if _, err := r.CreatePost(ctx, other, uid, "elsewhere"); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	posts, err := r.RecentPosts(ctx, general.ID, RecentLimit)
	if err != nil {
		t.Fatalf("RecentPosts: %v", err)
	}
	if len(posts) != RecentLimit {
		t.Fatalf("expected %d posts, got %d", RecentLimit, len(posts))
	}
	if posts[0].Body != "post 11" {
		t.Fatalf("expected newest first, got %q", posts[0].Body)
	}
	for i := 1; i < len(posts); i++ {
		if posts[i].Timestamp.After(posts[i-1].Timestamp) {
			t.Fatalf("posts not in descending order at %d", i)
		}
		if posts[i].Body == "elsewhere" {
			t.Fatalf("post from another board leaked in")
		}
	}
	if posts[0].Username != "alice" {
		t.Fatalf("expected joined username, got %q", posts[0].Username)
	}
}

func TestEditAndDeletePost(t *testing.T) {
	ctx := context.Background()
	r, sqlDB := newTestRepo(t)
	uid := addUser(t, sqlDB, "alice")
	general, _ := r.BoardByName(ctx, GeneralBoard)

	id, err := r.CreatePost(ctx, general.ID, uid, "typo")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if err := r.UpdateBody(ctx, id, "fixed"); err != nil {
		t.Fatalf("UpdateBody: %v", err)
	}
	posts, _ := r.RecentPosts(ctx, general.ID, RecentLimit)
	if len(posts) != 1 || posts[0].Body != "fixed" {
		t.Fatalf("unexpected posts after edit: %+v", posts)
	}

	if err := r.DeletePost(ctx, id); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if err := r.DeletePost(ctx, id); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound on second delete, got %v", err)
	}
	if err := r.UpdateBody(ctx, id, "x"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound on edit, got %v", err)
	}
}

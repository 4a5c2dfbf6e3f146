package message

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrBoardNotFound is returned when no board matches a reference.
	ErrBoardNotFound = errors.New("board not found")
	// ErrPostNotFound is returned when a post id does not exist.
	ErrPostNotFound = errors.New("post not found")
)

// Repo handles database operations for boards and posts.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a new message repository.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// ListBoards returns all boards ordered by id.
func (r *Repo) ListBoards(ctx context.Context) ([]*Board, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(description, '') FROM boards ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	var boards []*Board
	for rows.Next() {
		b := &Board{}
		if err := rows.Scan(&b.ID, &b.Name, &b.Description); err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// GetBoard returns a single board by ID.
func (r *Repo) GetBoard(ctx context.Context, id int) (*Board, error) {
	b := &Board{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(description, '') FROM boards WHERE id = ?
	`, id).Scan(&b.ID, &b.Name, &b.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBoardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get board %d: %w", id, err)
	}
	return b, nil
}

// BoardByName returns the board with exactly this name.
func (r *Repo) BoardByName(ctx context.Context, name string) (*Board, error) {
	b := &Board{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(description, '') FROM boards WHERE name = ?
	`, name).Scan(&b.ID, &b.Name, &b.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBoardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get board %s: %w", name, err)
	}
	return b, nil
}

// FindBoard resolves a reference that is either a numeric id or an exact name.
// A numeric reference that matches no id is retried as a name.
func (r *Repo) FindBoard(ctx context.Context, ref string) (*Board, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		b, err := r.GetBoard(ctx, id)
		if !errors.Is(err, ErrBoardNotFound) {
			return b, err
		}
	}
	return r.BoardByName(ctx, ref)
}

// CreateBoard adds a new board.
func (r *Repo) CreateBoard(ctx context.Context, name, description string) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO boards (name, description) VALUES (?, ?)
	`, name, description)
	if err != nil {
		return 0, fmt.Errorf("create board %s: %w", name, err)
	}
	id, err := result.LastInsertId()
	return int(id), err
}

// RecentPosts returns up to limit posts on a board, newest first.
func (r *Repo) RecentPosts(ctx context.Context, boardID, limit int) ([]*Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.board_id, m.user_id,
		       COALESCE(u.username, 'Unknown') as username,
		       m.body, m.timestamp
		FROM messages m
		LEFT JOIN users u ON u.id = m.user_id
		WHERE m.board_id = ?
		ORDER BY m.timestamp DESC, m.id DESC
		LIMIT ?
	`, boardID, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		p := &Post{}
		if err := rows.Scan(&p.ID, &p.BoardID, &p.UserID, &p.Username, &p.Body, &p.Timestamp); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CreatePost stores a new post stamped with the current time.
func (r *Repo) CreatePost(ctx context.Context, boardID, userID int, body string) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (board_id, user_id, body, timestamp)
		VALUES (?, ?, ?, ?)
	`, boardID, userID, body, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("post message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// UpdateBody replaces the body of a post on any board.
func (r *Repo) UpdateBody(ctx context.Context, id int, body string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE messages SET body = ? WHERE id = ?", body, id)
	if err != nil {
		return fmt.Errorf("edit message %d: %w", id, err)
	}
	return expectOne(res)
}

// DeletePost removes a post on any board.
func (r *Repo) DeletePost(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM messages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete message %d: %w", id, err)
	}
	return expectOne(res)
}

// CountPosts returns the total number of posts on a board.
func (r *Repo) CountPosts(ctx context.Context, boardID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages WHERE board_id = ?", boardID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/notepid/dusk_bbs/internal/db"
)

var (
	// ErrNotFound is returned when no account matches.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Repo handles database operations for users.
type Repo struct {
	db *sql.DB

	// HashCost is the bcrypt cost for new hashes.
	HashCost int
}

// NewRepo creates a new user repository.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db, HashCost: DefaultHashCost}
}

// Create registers a new account with role user. The existence check and the
// insert share one transaction.
func (r *Repo) Create(ctx context.Context, username, password string) (*User, error) {
	hash, err := HashPassword(password, r.HashCost)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create user: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE username = ?", username).Scan(&count); err != nil {
		return nil, fmt.Errorf("check user %s: %w", username, err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, registration_date, role)
		VALUES (?, ?, ?, ?)
	`, username, hash, now, RoleUser)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get user id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create user: %w", err)
	}

	return &User{
		ID:               int(id),
		Username:         username,
		PasswordHash:     hash,
		RegistrationDate: now,
		Role:             RoleUser,
	}, nil
}

// Authenticate checks username/password and returns the user if valid.
// An unknown username and a wrong password produce the same error.
func (r *Repo) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := r.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (r *Repo) GetByID(ctx context.Context, id int) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, registration_date, role
		FROM users WHERE id = ?
	`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// GetByUsername retrieves a user by username (case-sensitive).
func (r *Repo) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, registration_date, role
		FROM users WHERE username = ?
	`, username)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", username, err)
	}
	return u, nil
}

func scanUser(row *sql.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.RegistrationDate, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Exists checks if a username is already taken.
func (r *Repo) Exists(ctx context.Context, username string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE username = ?", username).Scan(&count); err != nil {
		return false, fmt.Errorf("check user %s: %w", username, err)
	}
	return count > 0, nil
}

// SetRole changes a user's role.
func (r *Repo) SetRole(ctx context.Context, id int, role string) error {
	if !ValidRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}
	res, err := r.db.ExecContext(ctx, "UPDATE users SET role = ? WHERE id = ?", role, id)
	if err != nil {
		return fmt.Errorf("set role for user %d: %w", id, err)
	}
	return expectOne(res, id)
}

// UpdatePassword changes a user's password.
func (r *Repo) UpdatePassword(ctx context.Context, id int, newPassword string) error {
	hash, err := HashPassword(newPassword, r.HashCost)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", hash, id)
	if err != nil {
		return fmt.Errorf("update password for user %d: %w", id, err)
	}
	return expectOne(res, id)
}

// List returns all users, ordered by username.
func (r *Repo) List(ctx context.Context) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, registration_date, role
		FROM users ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u := &User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.RegistrationDate, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func expectOne(res sql.Result, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

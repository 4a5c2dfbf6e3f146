package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var columns = map[string]string{
	ElementPrompt:    "color_prompt",
	ElementUsername:  "color_username_output",
	ElementTimestamp: "color_timestamp_output",
}

// Repo persists colour choices in user_preferences.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a new preferences repository.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Load returns the defaults merged with any stored choices for userID.
func (r *Repo) Load(ctx context.Context, userID int) (map[string]string, error) {
	var p, u, ts sql.NullString
	colors := Defaults()

	err := r.db.QueryRowContext(ctx, `
		SELECT color_prompt, color_username_output, color_timestamp_output
		FROM user_preferences WHERE user_id = ?
	`, userID).Scan(&p, &u, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return colors, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load preferences for user %d: %w", userID, err)
	}

	for element, v := range map[string]sql.NullString{
		ElementPrompt:    p,
		ElementUsername:  u,
		ElementTimestamp: ts,
	} {
		if v.Valid && v.String != "" {
			colors[element] = v.String
		}
	}
	return colors, nil
}

// Set stores one element's colour, creating the row when absent.
func (r *Repo) Set(ctx context.Context, userID int, element, color string) error {
	col, ok := columns[element]
	if !ok {
		return fmt.Errorf("unknown element %q", element)
	}
	query := fmt.Sprintf(`
		INSERT INTO user_preferences (user_id, %[1]s) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET %[1]s = excluded.%[1]s
	`, col)
	if _, err := r.db.ExecContext(ctx, query, userID, color); err != nil {
		return fmt.Errorf("save preference %s for user %d: %w", element, userID, err)
	}
	return nil
}

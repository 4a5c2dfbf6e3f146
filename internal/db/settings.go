package db

import (
	"context"
	"fmt"
)

// BBSSettings holds the BBS identity shown in banners.
type BBSSettings struct {
	Name    string
	Sysop   string
	Tagline string
}

// GetBBSSettings retrieves the BBS settings from the database.
func (db *DB) GetBBSSettings(ctx context.Context) (*BBSSettings, error) {
	var settings BBSSettings
	err := db.QueryRowContext(ctx, "SELECT name, sysop, tagline FROM bbs_settings WHERE id = 1").Scan(
		&settings.Name,
		&settings.Sysop,
		&settings.Tagline,
	)
	if err != nil {
		return nil, fmt.Errorf("load bbs settings: %w", err)
	}
	return &settings, nil
}

// UpdateBBSSettings updates the BBS settings in the database.
func (db *DB) UpdateBBSSettings(ctx context.Context, settings *BBSSettings) error {
	_, err := db.ExecContext(ctx,
		"UPDATE bbs_settings SET name = ?, sysop = ?, tagline = ? WHERE id = 1",
		settings.Name,
		settings.Sysop,
		settings.Tagline,
	)
	if err != nil {
		return fmt.Errorf("update bbs settings: %w", err)
	}
	return nil
}

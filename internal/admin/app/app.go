package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/config"
	"github.com/notepid/dusk_bbs/internal/db"
	"github.com/notepid/dusk_bbs/internal/filearea"
	"github.com/notepid/dusk_bbs/internal/message"
	"github.com/notepid/dusk_bbs/internal/obslog"
	"github.com/notepid/dusk_bbs/internal/user"
)

// App is the state shared by every admin screen.
type App struct {
	ConfigPath string
	Config     *config.Config
	DBPath     string
	DB         *db.DB
	Log        *zap.Logger

	Users  *user.Repo
	Boards *message.Repo
	Files  *filearea.Repo

	BusyTimeout time.Duration
}

// New loads the config and opens the database the server uses. The TUI owns
// the terminal, so logs go to admin.log in the data directory.
func New(configPath string) (*App, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(cfg.Paths.Data, 0755); err != nil {
		return nil, nil, fmt.Errorf("create data directory: %w", err)
	}

	logFile, err := os.OpenFile(filepath.Join(cfg.Paths.Data, "admin.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open admin log: %w", err)
	}
	log := obslog.NewWithWriter(cfg.Log, logFile)

	database, err := db.Open(cfg.Paths.Database, log)
	if err != nil {
		logFile.Close()
		return nil, nil, err
	}

	a := &App{
		ConfigPath:  configPath,
		Config:      cfg,
		DBPath:      cfg.Paths.Database,
		DB:          database,
		Log:         log,
		Users:       user.NewRepo(database.DB),
		Boards:      message.NewRepo(database.DB),
		Files:       filearea.NewRepo(database.DB),
		BusyTimeout: 5 * time.Second,
	}

	cleanup := func() {
		_ = database.Close()
		_ = log.Sync()
		_ = logFile.Close()
	}

	return a, cleanup, nil
}

// Context bounds one admin operation so a busy server cannot hang the UI.
func (a *App) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.BusyTimeout)
}

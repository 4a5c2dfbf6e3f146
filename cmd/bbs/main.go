package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/ansi"
	"github.com/notepid/dusk_bbs/internal/broadcast"
	"github.com/notepid/dusk_bbs/internal/command"
	"github.com/notepid/dusk_bbs/internal/config"
	"github.com/notepid/dusk_bbs/internal/db"
	"github.com/notepid/dusk_bbs/internal/filearea"
	"github.com/notepid/dusk_bbs/internal/game"
	"github.com/notepid/dusk_bbs/internal/mail"
	"github.com/notepid/dusk_bbs/internal/message"
	"github.com/notepid/dusk_bbs/internal/obslog"
	"github.com/notepid/dusk_bbs/internal/prefs"
	"github.com/notepid/dusk_bbs/internal/server"
	"github.com/notepid/dusk_bbs/internal/session"
	"github.com/notepid/dusk_bbs/internal/user"
	"github.com/notepid/dusk_bbs/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := obslog.New(cfg.Log)
	defer log.Sync()

	if err := os.MkdirAll(cfg.Paths.Data, 0755); err != nil {
		log.Fatal("failed to create data directory", zap.String("path", cfg.Paths.Data), zap.Error(err))
	}

	database, err := db.Open(cfg.Paths.Database, log)
	if err != nil {
		log.Fatal("failed to open database", zap.String("path", cfg.Paths.Database), zap.Error(err))
	}
	defer database.Close()
	log.Info("database opened", zap.String("path", cfg.Paths.Database))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boards := message.NewRepo(database.DB)
	queue := broadcast.NewQueue()
	sessions := session.NewStore(queue, log)

	// Resolved once; sessions fall back to a fixed board if this fails.
	if general, err := boards.BoardByName(ctx, message.GeneralBoard); err != nil {
		log.Error("failed to resolve default board", zap.String("board", message.GeneralBoard), zap.Error(err))
	} else {
		sessions.SetDefaultBoard(general.ID, general.Name)
	}

	games := game.NewRegistry()
	if err := game.RegisterNumberGuess(games, cfg.Games.NumberGuessMax, cfg.Games.NumberGuessAttempts); err != nil {
		log.Fatal("failed to register built-in game", zap.Error(err))
	}
	n, err := game.LoadDir(games, cfg.Paths.Games, log)
	if err != nil {
		log.Error("failed to load scripted games", zap.String("dir", cfg.Paths.Games), zap.Error(err))
	}
	log.Info("games loaded", zap.Int("scripted", n), zap.Int("total", len(games.List())))

	dispatcher := command.New(command.Deps{
		Sessions: sessions,
		Queue:    queue,
		Users:    user.NewRepo(database.DB),
		Boards:   boards,
		Mail:     mail.NewRepo(database.DB),
		Files:    filearea.NewRepo(database.DB),
		Prefs:    prefs.NewRepo(database.DB),
		Games:    games,
	}, log)

	lines := server.NewLineHandler(dispatcher, sessions, database, log)
	lines.UseArt(ansi.NewLoader(cfg.Paths.Art))

	// --- Telnet server ---
	telnetListener := server.NewListener("telnet", cfg.Server.TelnetPort, lines.TelnetHandler(ctx), log)
	go func() {
		if err := telnetListener.ListenAndServe(); err != nil {
			log.Fatal("telnet server error", zap.Error(err))
		}
	}()

	// --- SSH server ---
	var sshListener *server.SSHListener
	if cfg.Server.SSHEnabled {
		hostKeyPath := filepath.Join(cfg.Paths.Data, "ssh_host_key")
		sshListener, err = server.NewSSHListener(cfg.Server.SSHPort, hostKeyPath, lines.SSHHandler(ctx), log)
		if err != nil {
			log.Fatal("failed to create ssh listener", zap.Error(err))
		}
		go func() {
			if err := sshListener.ListenAndServe(); err != nil {
				log.Fatal("ssh server error", zap.Error(err))
			}
		}()
	}

	// --- HTTP server ---
	gin.SetMode(gin.ReleaseMode)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           web.New(dispatcher, sessions, log).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("listening", zap.String("listener", "http"), zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server error", zap.Error(err))
		}
	}()

	if s, err := database.GetBBSSettings(ctx); err == nil {
		log.Info("bbs running", zap.String("name", s.Name), zap.String("sysop", s.Sysop))
	}

	// --- Graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", zap.String("signal", sig.String()), zap.Int("sessions", sessions.Count()))

	_ = telnetListener.Close()
	if sshListener != nil {
		_ = sshListener.Close()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http forced shutdown", zap.Error(err))
	}
	cancel()

	log.Info("shutdown complete")
}

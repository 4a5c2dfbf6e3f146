package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/game"
)

const gameUsage = "Usage: GAME LIST | GAME <name> START | GAME QUIT"

func (d *Dispatcher) cmdGame(ctx context.Context, c *call) string {
	if len(c.args) == 0 {
		return gameUsage
	}

	switch strings.ToUpper(c.args[0]) {
	case "LIST":
		return d.listGames()
	case "QUIT", "EXIT":
		// Input never reaches the dispatcher while a game is running.
		return "You are not currently in a game."
	}

	if len(c.args) != 2 || strings.ToUpper(c.args[1]) != "START" {
		return gameUsage
	}
	if !c.sess.LoggedIn() {
		return "You must be logged in to play games."
	}
	if c.sess.InGame() {
		return "You are already in a game."
	}

	name := strings.ToUpper(c.args[0])
	g, err := d.Games.New(name)
	if err != nil {
		if errors.Is(err, game.ErrUnknownGame) {
			return fmt.Sprintf("Unknown game: %s. Type GAME LIST to see available games.", name)
		}
		return d.fail(c, err)
	}
	text, err := g.Start()
	if err != nil {
		g.Close()
		d.log.Warn("game failed to start",
			zap.String("game", name), zap.String("session", c.sess.ID), zap.Error(err))
		return fmt.Sprintf("%s failed to start. Try another game.", name)
	}
	c.sess.StartGame(name, g)
	return text
}

func (d *Dispatcher) listGames() string {
	games := d.Games.List()
	if len(games) == 0 {
		return "No games are installed."
	}

	var b strings.Builder
	b.WriteString("Available games:")
	for _, g := range games {
		fmt.Fprintf(&b, "\n  %s", g.Name)
		if g.Description != "" {
			b.WriteString(" - " + g.Description)
		}
	}
	b.WriteString("\nStart one with GAME <name> START.")
	return b.String()
}

package game

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// NumberGuessName is the registry name of the built-in guessing game.
const NumberGuessName = "NUMBERGUESS"

// NumberGuess is a guess-the-number game with a fixed attempt budget.
type NumberGuess struct {
	max         int
	maxAttempts int
	target      int
	attempts    int
}

// NewNumberGuess creates a game with a random target in [1, max].
func NewNumberGuess(max, maxAttempts int) *NumberGuess {
	return NewNumberGuessWithTarget(max, maxAttempts, rand.Intn(max)+1)
}

// NewNumberGuessWithTarget creates a game with a known target.
func NewNumberGuessWithTarget(max, maxAttempts, target int) *NumberGuess {
	return &NumberGuess{max: max, maxAttempts: maxAttempts, target: target}
}

// RegisterNumberGuess adds the guessing game to a registry.
func RegisterNumberGuess(r *Registry, max, maxAttempts int) error {
	return r.Register(NumberGuessName,
		fmt.Sprintf("Guess a number between 1 and %d", max),
		func() (Game, error) { return NewNumberGuess(max, maxAttempts), nil })
}

// Start implements Game.
func (g *NumberGuess) Start() (string, error) {
	return fmt.Sprintf("I'm thinking of a number between 1 and %d. You have %d attempts.\nType your guess, or QUIT to leave.",
		g.max, g.maxAttempts), nil
}

// Handle implements Game. Input that is not a number does not use an attempt.
func (g *NumberGuess) Handle(input string) (string, bool) {
	guess, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return fmt.Sprintf("Please enter a valid number between 1 and %d.", g.max), false
	}

	g.attempts++
	if guess == g.target {
		return fmt.Sprintf("Correct! The number was %d. You got it in %d %s.",
			g.target, g.attempts, plural(g.attempts, "attempt", "attempts")), true
	}

	hint := "Too low!"
	if guess > g.target {
		hint = "Too high!"
	}
	left := g.maxAttempts - g.attempts
	if left <= 0 {
		return fmt.Sprintf("%s Out of attempts. The number was %d.", hint, g.target), true
	}
	return fmt.Sprintf("%s %d %s remaining.", hint, left, plural(left, "attempt", "attempts")), false
}

// Close implements Game.
func (g *NumberGuess) Close() {}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

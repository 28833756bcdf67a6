package server

import (
	"go.uber.org/zap"

	"github.com/fransk/guess/games"
)

// A game needs to:
// 1. greet the player
// 2. answer each message from the player
// 3. fail when a message cannot be understood, which ends the game
type Game interface {
	Intro() []string
	HandleMsg(msg []byte) (string, error)
}

// NewGame creates the game for one connection.
type NewGame func(logger *zap.Logger) Game

func newGuessingGame(logger *zap.Logger) Game {
	return games.NewSession(games.RandomSecret(), logger)
}

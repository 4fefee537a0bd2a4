package game

import "errors"

// Pairing errors returned by match constructors. These are precondition
// violations: no match state is created when one is returned.
var (
	// ErrSamePlayer is returned when a player challenges themselves.
	ErrSamePlayer = errors.New("a player cannot face themselves")

	// ErrBothBots is returned when a game does not allow two non-human players.
	ErrBothBots = errors.New("two bots cannot face each other in this game")

	// ErrBotNotAllowed is returned when a game requires two human players.
	ErrBotNotAllowed = errors.New("this game requires two human players")
)

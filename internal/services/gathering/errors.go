package gathering

import (
	"errors"
)

var (
	// ErrUnknownTeam is returned when a team code is not a KBO team
	ErrUnknownTeam = errors.New("unknown team code")

	// ErrUnknownStadium is returned when the stadium code is not a KBO venue
	ErrUnknownStadium = errors.New("unknown stadium code")

	// ErrInvalidCapacity is returned when the participant limit is out of range
	ErrInvalidCapacity = errors.New("max participants must be between 2 and 10")

	// ErrPastGame is returned when the game has already started
	ErrPastGame = errors.New("game date must be in the future")
)

package chat

import (
	"errors"
)

var (
	// ErrEmptyMessage is returned when a send carries no content
	ErrEmptyMessage = errors.New("message content cannot be empty")

	// ErrSessionClosed is returned by sends on a closed session
	ErrSessionClosed = errors.New("session is closed")
)

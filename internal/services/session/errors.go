package session

import (
	"errors"
)

var (
	// ErrInvalidEmail is returned when the email is not a valid address
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrPasswordTooShort is returned when the password is under 8 characters
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")

	// ErrInvalidNickname is returned when the nickname is not 2 to 10
	// hangul, latin or digit characters
	ErrInvalidNickname = errors.New("nickname must be 2 to 10 hangul, latin or digit characters")

	// ErrUnknownTeam is returned when a supporting team code is not a KBO team
	ErrUnknownTeam = errors.New("unknown team code")

	// ErrNotSignedIn is returned when an operation requires a session and
	// none is present
	ErrNotSignedIn = errors.New("not signed in")
)

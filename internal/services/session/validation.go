package session

import (
	"regexp"

	"github.com/seungho-m/jikgwan/internal/models"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nicknamePattern = regexp.MustCompile(`^[가-힣a-zA-Z0-9]{2,10}$`)
)

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}

func validateNickname(nickname string) error {
	if !nicknamePattern.MatchString(nickname) {
		return ErrInvalidNickname
	}
	return nil
}

func validateTeams(teams []string) error {
	for _, team := range teams {
		if !models.ValidTeamCode(team) {
			return ErrUnknownTeam
		}
	}
	return nil
}

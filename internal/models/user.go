package models

import (
	"time"
)

// Gender is the self-reported gender of a user
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// AgeRange buckets a user's age for display on profiles
type AgeRange string

const (
	AgeRangeTeens       AgeRange = "TEENS"
	AgeRangeTwenties    AgeRange = "TWENTIES"
	AgeRangeThirties    AgeRange = "THIRTIES"
	AgeRangeForties     AgeRange = "FORTIES"
	AgeRangeFiftiesPlus AgeRange = "FIFTIES_PLUS"
)

// User represents an account on the Jikgwan service. The backend owns the
// record; the client holds an advisory copy fetched from /users/me.
type User struct {
	// ID is the server-assigned user identifier
	ID int64 `json:"id"`

	// Email is the login email address
	Email string `json:"email"`

	// Nickname is the display name shown to other fans
	Nickname string `json:"nickname"`

	// Gender is optional profile data
	Gender Gender `json:"gender,omitempty"`

	// AgeRange is optional profile data
	AgeRange AgeRange `json:"ageRange,omitempty"`

	// SupportingTeams are the KBO team codes the user follows
	SupportingTeams []string `json:"supportingTeams,omitempty"`

	// ProfileImageURL points at the externally stored profile image
	ProfileImageURL string `json:"profileImageUrl,omitempty"`

	// CreatedAt is when the account was created
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileComplete reports whether the profile carries everything the app
// requires before hosting or joining a gathering.
func (u *User) ProfileComplete() bool {
	if u == nil {
		return false
	}

	return u.ProfileImageURL != "" &&
		u.Gender != "" &&
		u.AgeRange != "" &&
		len(u.SupportingTeams) > 0
}

// Package model defines the data structures shared by the client SDK and the
// development backend.
//
// Field names in the `json:"..."` tags are the wire names the remote
// endpoints use, so they are deliberately inconsistent (snake_case for most
// payloads, camelCase for a few older ones).
package model

import "time"

// Gender values accepted by sign-up and used for feed visibility.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// Genders lists the selectable genders in display order.
var Genders = []string{GenderMale, GenderFemale, GenderOther}

// User is a registered account as stored by the backend.
//
// The client never sees PasswordHash; the signed-in user's view of the
// account is session.Session.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Gender       string    `json:"gender"`
	Age          int       `json:"age"`
	Height       int       `json:"height"` // inches
	CreatedAt    time.Time `json:"created_at"`
}

// IsValidGender reports whether g is one of Genders.
func IsValidGender(g string) bool {
	for _, v := range Genders {
		if v == g {
			return true
		}
	}
	return false
}

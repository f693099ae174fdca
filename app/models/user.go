package models

import (
	"strings"
	"time"
)

// Validate checks the username rules.
func (u *User) Validate() error {
	return Validate(u)
}

// BeforeCreate stamps the account creation time.
func (u *User) BeforeCreate() {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
}

// NormalizedUsername is the lookup key used to keep usernames unique
// regardless of case.
func (u *User) NormalizedUsername() string {
	return NormalizeUsername(u.Username)
}

// NormalizeUsername folds a username for case-insensitive comparison.
func NormalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

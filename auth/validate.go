// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"regexp"
	"unicode"
)

var (
	ErrUsernameLength  = errors.New("username must be between 3 and 50 characters")
	ErrUsernameFormat  = errors.New("username may only contain letters, digits, '.', '_' and '-'")
	ErrPasswordLength  = errors.New("password must be at least 8 characters")
	ErrPasswordClasses = errors.New("password must contain an upper-case letter, a lower-case letter and a digit")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateUsername enforces the login username format
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 50 {
		return ErrUsernameLength
	}
	if !usernamePattern.MatchString(username) {
		return ErrUsernameFormat
	}
	return nil
}

// ValidatePassword requires 8+ characters with upper, lower and digit
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordLength
	}
	var upper, lower, digit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return ErrPasswordClasses
	}
	return nil
}

package services

import (
	"net/mail"
	"regexp"
	"strings"
)

var (
	ErrAuthCredentialsInvalid = validationError("identifier and password are required")
	ErrUsernameInvalid        = validationError("username must be 3-32 characters of a-z, 0-9, dot, dash or underscore")
)

var usernameFormatRegex = regexp.MustCompile(`^[a-z0-9._-]{3,32}$`)

func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return ""
	}
	return email
}

// NormalizeUsername returns the canonical username, or an error when the format is not allowed.
// An empty input is valid and means "generate one".
func NormalizeUsername(raw string) (string, error) {
	username := strings.ToLower(strings.TrimSpace(raw))
	if username == "" {
		return "", nil
	}
	if !usernameFormatRegex.MatchString(username) {
		return "", ErrUsernameInvalid
	}
	return username, nil
}

func NormalizeDisplayName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// NormalizeLoginInput accepts a username or an email as the identifier.
func NormalizeLoginInput(identifierRaw string, passwordRaw string) (string, string, error) {
	identifier := strings.ToLower(strings.TrimSpace(identifierRaw))
	password := strings.TrimSpace(passwordRaw)
	if identifier == "" || password == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	return identifier, password, nil
}

package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/clubstride/hourtrack/internal/security"
)

const (
	temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	TemporaryPasswordLength   = 12
	usernameSuffixDigits      = 3
	usernameBaseMaxLength     = 32 - usernameSuffixDigits
)

// GenerateTemporaryPassword returns a random password over an unambiguous alphabet that also
// passes the strength rule, so a forced change can start from it.
func GenerateTemporaryPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	for attempt := 0; attempt < 32; attempt++ {
		password, err := security.RandomString(length, temporaryPasswordAlphabet)
		if err != nil {
			return "", err
		}
		if ValidatePasswordStrength(password) == nil {
			return password, nil
		}
	}
	return "", fmt.Errorf("generate temporary password: no strong candidate")
}

// UsernameBase reduces a display name to lowercase letters and digits.
func UsernameBase(name string) string {
	var builder strings.Builder
	for _, char := range strings.ToLower(name) {
		if char > unicode.MaxASCII {
			continue
		}
		if unicode.IsLetter(char) || unicode.IsDigit(char) {
			builder.WriteRune(char)
		}
	}

	base := builder.String()
	if base == "" {
		base = "intern"
	}
	if len(base) > usernameBaseMaxLength {
		base = base[:usernameBaseMaxLength]
	}
	return base
}

func GenerateUsernameCandidate(name string) (string, error) {
	suffix, err := security.RandomString(usernameSuffixDigits, "0123456789")
	if err != nil {
		return "", err
	}
	return UsernameBase(name) + suffix, nil
}

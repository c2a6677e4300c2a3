package services

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWeakPassword               = validationError("password needs at least 8 characters with upper, lower and digit")
	ErrPasswordChangeInvalidInput = validationError("current, new and confirmation passwords are required")
	ErrPasswordMismatch           = validationError("new password and confirmation do not match")
	ErrInvalidCurrentPassword     = validationError("current password is incorrect")
	ErrNewPasswordMustDiffer      = validationError("new password must differ from the current one")
	ErrPasswordTooLong            = validationError(fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
)

// MaxPasswordBytes is the longest input bcrypt hashes.
const MaxPasswordBytes = 72

func ValidatePasswordStrength(password string) error {
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	if len([]rune(password)) < 8 {
		return ErrWeakPassword
	}

	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}

	if hasUpper && hasLower && hasDigit {
		return nil
	}
	return ErrWeakPassword
}

func ValidatePasswordChange(passwordHash string, currentPassword string, newPassword string, confirmPassword string) error {
	currentPassword = strings.TrimSpace(currentPassword)
	newPassword = strings.TrimSpace(newPassword)
	confirmPassword = strings.TrimSpace(confirmPassword)

	if currentPassword == "" || newPassword == "" || confirmPassword == "" {
		return ErrPasswordChangeInvalidInput
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCurrentPassword
	}
	if currentPassword == newPassword {
		return ErrNewPasswordMustDiffer
	}
	return ValidatePasswordStrength(newPassword)
}

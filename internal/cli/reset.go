package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/clubstride/hourtrack/internal/db"
	"github.com/clubstride/hourtrack/internal/models"
	"github.com/clubstride/hourtrack/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ResetPasswordOptions selects the account and how its new password is chosen. With
// Password empty a temporary password is generated and printed.
type ResetPasswordOptions struct {
	Username string
	Password string
}

// RunResetPasswordCommand sets a new password for an existing account and forces a change
// on its next sign-in. Sessions held by a running server stay valid until they expire.
func RunResetPasswordCommand(dbPath string, options ResetPasswordOptions, out io.Writer) error {
	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	password, generated, err := resetPassword(db.NewUserRepository(database), options)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Password reset successful")
	if generated {
		fmt.Fprintf(out, "Temporary password: %s\n", password)
	}
	fmt.Fprintln(out, "User must change password on next login.")
	return nil
}

type passwordResetRepository interface {
	FindByLoginIdentifier(identifier string) (models.User, error)
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
}

func resetPassword(users passwordResetRepository, options ResetPasswordOptions) (string, bool, error) {
	identifier := strings.ToLower(strings.TrimSpace(options.Username))
	if identifier == "" {
		return "", false, errors.New("username is required")
	}

	user, err := users.FindByLoginIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, fmt.Errorf("user %s not found", identifier)
		}
		return "", false, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive() {
		return "", false, fmt.Errorf("user %s is not active", identifier)
	}

	password := options.Password
	generated := password == ""
	if generated {
		password, err = services.GenerateTemporaryPassword(services.TemporaryPasswordLength)
		if err != nil {
			return "", false, fmt.Errorf("generate temporary password: %w", err)
		}
	} else if err := services.ValidatePasswordStrength(password); err != nil {
		return "", false, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", false, fmt.Errorf("hash password: %w", err)
	}
	if err := users.UpdatePassword(user.ID, string(passwordHash), true); err != nil {
		return "", false, fmt.Errorf("update user password: %w", err)
	}
	return password, generated, nil
}

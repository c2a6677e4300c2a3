package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clubstride/hourtrack/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// BootstrapAdmin describes the account created on first initialization.
type BootstrapAdmin struct {
	Name     string
	Email    string
	Username string
	Password string
}

func DefaultBootstrapAdmin() BootstrapAdmin {
	return BootstrapAdmin{
		Name:     "Admin",
		Email:    "admin@clubstride.org",
		Username: "admin123",
		Password: "admin123456",
	}
}

// SeedDefaultAdmin creates the bootstrap admin when the store holds no admin yet.
// The seeded password must be rotated on first login.
func SeedDefaultAdmin(database *gorm.DB, admin BootstrapAdmin) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	username := strings.ToLower(strings.TrimSpace(admin.Username))
	name := strings.TrimSpace(admin.Name)
	if email == "" || username == "" || name == "" || admin.Password == "" {
		return false, errors.New("bootstrap admin requires name, email, username and password")
	}

	created := false
	err := database.Transaction(func(tx *gorm.DB) error {
		var admins int64
		if err := tx.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if admins > 0 {
			return nil
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash bootstrap password: %w", err)
		}

		now := time.Now().UTC()
		user := models.User{
			Name:               name,
			Email:              email,
			Username:           &username,
			School:             "N/A",
			Role:               models.RoleAdmin,
			Status:             models.StatusActive,
			PasswordHash:       string(passwordHash),
			MustChangePassword: true,
			StartDate:          now.Format(models.DateLayout),
			CreatedAt:          now,
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create bootstrap admin: %w", err)
		}
		created = true
		return nil
	})
	return created, err
}

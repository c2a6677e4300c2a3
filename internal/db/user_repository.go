package db

import (
	"time"

	"github.com/clubstride/hourtrack/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByID(userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// FindByLoginIdentifier matches either the username or the email; both are stored unique.
func (repo *UserRepository) FindByLoginIdentifier(identifier string) (models.User, error) {
	var user models.User
	if err := repo.database.
		Where("lower(trim(username)) = ? OR lower(trim(email)) = ?", identifier, identifier).
		Order("id ASC").
		First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) ExistsByNormalizedEmail(email string) (bool, error) {
	return repo.existsWhere("lower(trim(email)) = ?", email)
}

func (repo *UserRepository) ExistsByNormalizedUsername(username string) (bool, error) {
	return repo.existsWhere("lower(trim(username)) = ?", username)
}

func (repo *UserRepository) ExistsByNormalizedName(name string) (bool, error) {
	return repo.existsWhere("lower(trim(name)) = ?", name)
}

func (repo *UserRepository) existsWhere(clause string, value string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).Where(clause, value).Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) Create(user *models.User) error {
	return repo.database.Create(user).Error
}

func (repo *UserRepository) ListUsers(query models.UserQuery) ([]models.User, error) {
	statement := repo.database.Model(&models.User{})
	if query.Status != "" {
		statement = statement.Where("status = ?", query.Status)
	}
	if query.Role != "" {
		statement = statement.Where("role = ?", query.Role)
	}
	if query.LeadInternID != nil {
		statement = statement.Where("lead_intern_id = ?", *query.LeadInternID)
	}
	if query.ExcludeAdmin {
		statement = statement.Where("role <> ?", models.RoleAdmin)
	}

	users := make([]models.User, 0)
	if err := statement.Order("created_at ASC, id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ActivatePending moves a pending user to active with fresh credentials.
// It reports false when the user is no longer pending.
func (repo *UserRepository) ActivatePending(userID uint, username string, passwordHash string) (bool, error) {
	return repo.transitionStatus(userID, models.StatusPendingApproval, map[string]any{
		"status":               models.StatusActive,
		"username":             username,
		"password_hash":        passwordHash,
		"must_change_password": true,
	})
}

func (repo *UserRepository) RejectPending(userID uint) (bool, error) {
	return repo.transitionStatus(userID, models.StatusPendingApproval, map[string]any{
		"status": models.StatusInactive,
	})
}

func (repo *UserRepository) Deactivate(userID uint) (bool, error) {
	return repo.transitionStatus(userID, models.StatusActive, map[string]any{
		"status": models.StatusInactive,
	})
}

// Reactivate moves an inactive user back to active. Credentials are only written when provided.
func (repo *UserRepository) Reactivate(userID uint, username string, passwordHash string) (bool, error) {
	updates := map[string]any{"status": models.StatusActive}
	if username != "" && passwordHash != "" {
		updates["username"] = username
		updates["password_hash"] = passwordHash
		updates["must_change_password"] = true
	}
	return repo.transitionStatus(userID, models.StatusInactive, updates)
}

func (repo *UserRepository) transitionStatus(userID uint, from models.UserStatus, updates map[string]any) (bool, error) {
	result := repo.database.Model(&models.User{}).
		Where("id = ? AND status = ?", userID, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (repo *UserRepository) UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"password_hash":        passwordHash,
		"must_change_password": mustChangePassword,
	}).Error
}

func (repo *UserRepository) UpdateLastLogin(userID uint, at time.Time) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Update("last_login_at", at).Error
}

func (repo *UserRepository) SetLeadIntern(coreInternID uint, leadInternID *uint) error {
	return repo.database.Model(&models.User{}).
		Where("id = ? AND role = ?", coreInternID, models.RoleCoreIntern).
		Update("lead_intern_id", leadInternID).Error
}

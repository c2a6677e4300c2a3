package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/clubstride/hourtrack/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username/email or password", ErrUnauthorized)
	ErrAccountLocked      = fmt.Errorf("%w: too many failed sign-in attempts, try again later", ErrRateLimited)
	ErrSessionExpired     = fmt.Errorf("%w: session expired", ErrUnauthorized)
)

type AuthUserRepository interface {
	FindByLoginIdentifier(identifier string) (models.User, error)
	FindByID(userID uint) (models.User, error)
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
	UpdateLastLogin(userID uint, at time.Time) error
}

type AuthService struct {
	users    AuthUserRepository
	sessions *SessionStore
	throttle *LoginThrottle
}

func NewAuthService(users AuthUserRepository, sessions *SessionStore, throttle *LoginThrottle) *AuthService {
	if sessions == nil {
		sessions = NewSessionStore(0, 0)
	}
	if throttle == nil {
		throttle = NewLoginThrottle(0, 0)
	}
	return &AuthService{users: users, sessions: sessions, throttle: throttle}
}

func (service *AuthService) Sessions() *SessionStore {
	return service.sessions
}

func (service *AuthService) Throttle() *LoginThrottle {
	return service.throttle
}

// Login resolves the account, checks its lockout, then the credentials. Unknown, pending
// and inactive accounts fail exactly like a wrong password and count toward the lockout.
func (service *AuthService) Login(identifierRaw string, passwordRaw string, now time.Time) (models.User, Session, error) {
	identifier, password, err := NormalizeLoginInput(identifierRaw, passwordRaw)
	if err != nil {
		return models.User{}, Session{}, err
	}

	user, err := service.users.FindByLoginIdentifier(identifier)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, Session{}, fmt.Errorf("load user for login: %w", err)
	}
	found := err == nil

	throttleKey := loginThrottleKey(user, found, identifier)
	if service.throttle.Locked(throttleKey, now) {
		return models.User{}, Session{}, ErrAccountLocked
	}

	if !found || !user.IsActive() || !user.HasCredentials() ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		service.throttle.RecordFailure(throttleKey, now)
		return models.User{}, Session{}, ErrInvalidCredentials
	}

	service.throttle.Reset(throttleKey)
	if err := service.users.UpdateLastLogin(user.ID, now); err != nil {
		return models.User{}, Session{}, fmt.Errorf("record last login: %w", err)
	}
	user.LastLoginAt = &now

	return user, service.sessions.Create(user, now), nil
}

// loginThrottleKey counts failures per account, so the username and the email share one
// counter. Identifiers that match no account are counted by themselves.
func loginThrottleKey(user models.User, found bool, identifier string) string {
	if found {
		return "user:" + strconv.FormatUint(uint64(user.ID), 10)
	}
	return "identifier:" + identifier
}

// Authenticate resolves a session token to its current user, refreshing the idle deadline.
func (service *AuthService) Authenticate(token string, now time.Time) (models.User, Session, error) {
	session, ok := service.sessions.Touch(token, now)
	if !ok {
		return models.User{}, Session{}, ErrSessionExpired
	}

	user, err := service.users.FindByID(session.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		service.sessions.Revoke(token)
		return models.User{}, Session{}, ErrSessionExpired
	}
	if err != nil {
		return models.User{}, Session{}, fmt.Errorf("load session user: %w", err)
	}
	if !user.IsActive() || user.Role != session.Role {
		service.sessions.Revoke(token)
		return models.User{}, Session{}, ErrSessionExpired
	}
	return user, session, nil
}

func (service *AuthService) Logout(token string) {
	service.sessions.Revoke(token)
}

func (service *AuthService) ChangePassword(caller Caller, currentPassword string, newPassword string, confirmPassword string) error {
	user, err := service.users.FindByID(caller.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundError("user")
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive() {
		return unauthorizedError("inactive accounts cannot change passwords")
	}

	if err := ValidatePasswordChange(user.PasswordHash, currentPassword, newPassword, confirmPassword); err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(newPassword)), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := service.users.UpdatePassword(user.ID, string(passwordHash), false); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

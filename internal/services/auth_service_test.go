package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/clubstride/hourtrack/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubAuthUserRepo struct {
	users             map[uint]models.User
	lookupErr         error
	updatedHash       string
	updatedMustChange bool
	lastLoginUserID   uint
}

func newStubAuthUserRepo(users ...models.User) *stubAuthUserRepo {
	stub := &stubAuthUserRepo{users: make(map[uint]models.User)}
	for _, user := range users {
		stub.users[user.ID] = user
	}
	return stub
}

func (stub *stubAuthUserRepo) FindByLoginIdentifier(identifier string) (models.User, error) {
	if stub.lookupErr != nil {
		return models.User{}, stub.lookupErr
	}
	for _, user := range stub.users {
		if strings.EqualFold(user.UsernameValue(), identifier) || strings.EqualFold(user.Email, identifier) {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (stub *stubAuthUserRepo) FindByID(userID uint) (models.User, error) {
	user, ok := stub.users[userID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (stub *stubAuthUserRepo) UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error {
	user := stub.users[userID]
	user.PasswordHash = passwordHash
	user.MustChangePassword = mustChangePassword
	stub.users[userID] = user
	stub.updatedHash = passwordHash
	stub.updatedMustChange = mustChangePassword
	return nil
}

func (stub *stubAuthUserRepo) UpdateLastLogin(userID uint, _ time.Time) error {
	stub.lastLoginUserID = userID
	return nil
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}

func activeUserForAuthTest(t *testing.T, id uint, username string, password string) models.User {
	t.Helper()
	return models.User{
		ID:           id,
		Name:         "User " + username,
		Email:        username + "@example.org",
		Username:     &username,
		Role:         models.RoleCoreIntern,
		Status:       models.StatusActive,
		PasswordHash: mustHashPassword(t, password),
	}
}

func TestAuthLoginSucceedsWithUsernameOrEmail(t *testing.T) {
	repo := newStubAuthUserRepo(activeUserForAuthTest(t, 1, "jane123", "StrongPass1"))
	service := NewAuthService(repo, nil, nil)
	now := time.Now().UTC()

	for _, identifier := range []string{"JANE123", "jane123@example.org"} {
		user, session, err := service.Login(identifier, "StrongPass1", now)
		if err != nil {
			t.Fatalf("login with %q: %v", identifier, err)
		}
		if user.ID != 1 || session.UserID != 1 || session.Token == "" {
			t.Fatalf("unexpected login result user=%+v session=%+v", user, session)
		}
	}
	if repo.lastLoginUserID != 1 {
		t.Fatal("expected last login to be recorded")
	}
	if service.Sessions().Len() != 2 {
		t.Fatalf("expected two live sessions, got %d", service.Sessions().Len())
	}
}

func TestAuthLoginRejectsInactiveAndPendingAccounts(t *testing.T) {
	inactive := activeUserForAuthTest(t, 1, "gone123", "StrongPass1")
	inactive.Status = models.StatusInactive
	pending := models.User{ID: 2, Name: "Pending", Email: "pending@example.org", Status: models.StatusPendingApproval, Role: models.RoleCoreIntern}
	service := NewAuthService(newStubAuthUserRepo(inactive, pending), nil, nil)

	for _, identifier := range []string{"gone123", "pending@example.org", "nobody"} {
		_, _, err := service.Login(identifier, "StrongPass1", time.Now().UTC())
		if !errors.Is(err, ErrInvalidCredentials) || !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected invalid credentials for %q, got %v", identifier, err)
		}
	}
}

func TestAuthLoginLockoutIsPerAccount(t *testing.T) {
	repo := newStubAuthUserRepo(
		activeUserForAuthTest(t, 1, "jane123", "StrongPass1"),
		activeUserForAuthTest(t, 2, "omar456", "StrongPass2"),
	)
	service := NewAuthService(repo, nil, NewLoginThrottle(5, 15*time.Minute))
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	for attempt := 0; attempt < 5; attempt++ {
		if _, _, err := service.Login("jane123", "WrongPass1", now); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected invalid credentials, got %v", attempt+1, err)
		}
	}

	if _, _, err := service.Login("jane123", "StrongPass1", now); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected locked account even with the right password, got %v", err)
	}
	if _, _, err := service.Login("omar456", "StrongPass2", now); err != nil {
		t.Fatalf("expected other account unaffected, got %v", err)
	}
	if _, _, err := service.Login("jane123", "StrongPass1", now.Add(16*time.Minute)); err != nil {
		t.Fatalf("expected login after window to succeed, got %v", err)
	}
}

func TestAuthLoginLockoutSharedAcrossUsernameAndEmail(t *testing.T) {
	repo := newStubAuthUserRepo(activeUserForAuthTest(t, 1, "alice", "StrongPass1"))
	service := NewAuthService(repo, nil, NewLoginThrottle(3, time.Minute))
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	identifiers := []string{"alice", "alice@example.org", "ALICE"}
	for attempt, identifier := range identifiers {
		if _, _, err := service.Login(identifier, "WrongPass1", now); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d via %q: expected invalid credentials, got %v", attempt+1, identifier, err)
		}
	}

	for _, identifier := range []string{"alice", "alice@example.org"} {
		if _, _, err := service.Login(identifier, "StrongPass1", now); !errors.Is(err, ErrAccountLocked) {
			t.Fatalf("expected %q to be locked with the account, got %v", identifier, err)
		}
	}

	later := now.Add(2 * time.Minute)
	if _, _, err := service.Login("alice@example.org", "WrongPass1", later); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials after the window, got %v", err)
	}
	if _, _, err := service.Login("alice", "StrongPass1", later); err != nil {
		t.Fatalf("expected login via username to succeed, got %v", err)
	}
	for attempt := 0; attempt < 2; attempt++ {
		if _, _, err := service.Login("alice@example.org", "WrongPass1", later); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected invalid credentials, got %v", attempt+1, err)
		}
	}
	if _, _, err := service.Login("alice@example.org", "StrongPass1", later); err != nil {
		t.Fatalf("expected success to have cleared the email failures too, got %v", err)
	}
}

func TestAuthLoginUnknownIdentifierLocksItself(t *testing.T) {
	repo := newStubAuthUserRepo(activeUserForAuthTest(t, 1, "alice", "StrongPass1"))
	service := NewAuthService(repo, nil, NewLoginThrottle(2, time.Minute))
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	for attempt := 0; attempt < 2; attempt++ {
		if _, _, err := service.Login("ghost", "WrongPass1", now); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected invalid credentials, got %v", attempt+1, err)
		}
	}
	if _, _, err := service.Login("ghost", "WrongPass1", now); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected unknown identifier to lock, got %v", err)
	}
	if _, _, err := service.Login("alice", "StrongPass1", now); err != nil {
		t.Fatalf("expected real account unaffected, got %v", err)
	}
}

func TestAuthAuthenticateRevokesDeactivatedUser(t *testing.T) {
	repo := newStubAuthUserRepo(activeUserForAuthTest(t, 1, "jane123", "StrongPass1"))
	service := NewAuthService(repo, nil, nil)
	now := time.Now().UTC()

	_, session, err := service.Login("jane123", "StrongPass1", now)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := service.Authenticate(session.Token, now.Add(time.Minute)); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	user := repo.users[1]
	user.Status = models.StatusInactive
	repo.users[1] = user

	if _, _, err := service.Authenticate(session.Token, now.Add(2*time.Minute)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected deactivated user to lose the session, got %v", err)
	}
	if service.Sessions().Len() != 0 {
		t.Fatal("expected session to be revoked")
	}
}

func TestAuthChangePasswordClearsMustChange(t *testing.T) {
	user := activeUserForAuthTest(t, 1, "jane123", "TempPass12")
	user.MustChangePassword = true
	repo := newStubAuthUserRepo(user)
	service := NewAuthService(repo, nil, nil)
	caller := CallerFor(user)

	if err := service.ChangePassword(caller, "TempPass12", "weak", "weak"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for weak password, got %v", err)
	}
	if err := service.ChangePassword(caller, "TempPass12", "NewStrong1", "NewStrong1"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if repo.updatedMustChange {
		t.Fatal("expected must_change_password to be cleared")
	}
	if bcrypt.CompareHashAndPassword([]byte(repo.updatedHash), []byte("NewStrong1")) != nil {
		t.Fatal("expected stored hash to match the new password")
	}
}

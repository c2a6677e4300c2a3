package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clubstride/hourtrack/internal/db"
	"github.com/clubstride/hourtrack/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const usernameGenerationAttempts = 10

var (
	ErrAccountNameRequired    = validationError("name is required")
	ErrAccountEmailInvalid    = validationError("a valid email address is required")
	ErrAccountSchoolRequired  = validationError("school is required")
	ErrAccountRoleInvalid     = validationError("role must be core intern or lead intern")
	ErrAccountDecisionInvalid = validationError("decision must be approve or reject")
	ErrCannotDeactivateSelf   = validationError("admins cannot deactivate their own account")
	ErrLeadAssignmentInvalid  = validationError("assignment needs a core intern and an active lead intern")
)

type AccountUserRepository interface {
	FindByID(userID uint) (models.User, error)
	ExistsByNormalizedEmail(email string) (bool, error)
	ExistsByNormalizedUsername(username string) (bool, error)
	ExistsByNormalizedName(name string) (bool, error)
	Create(user *models.User) error
	ListUsers(query models.UserQuery) ([]models.User, error)
	ActivatePending(userID uint, username string, passwordHash string) (bool, error)
	RejectPending(userID uint) (bool, error)
	Deactivate(userID uint) (bool, error)
	Reactivate(userID uint, username string, passwordHash string) (bool, error)
	SetLeadIntern(coreInternID uint, leadInternID *uint) error
}

type SessionRevoker interface {
	RevokeUser(userID uint) int
}

// CredentialsNotifier delivers freshly issued credentials to the account owner.
type CredentialsNotifier interface {
	SendCredentials(ctx context.Context, user models.User, credentials IssuedCredentials) error
}

type IssuedCredentials struct {
	Username          string
	TemporaryPassword string
}

type AccountRequest struct {
	Name      string
	Email     string
	School    string
	Role      string
	Username  string
	StartDate string
}

type AccountDecision string

const (
	DecisionApprove AccountDecision = "approve"
	DecisionReject  AccountDecision = "reject"
)

func ParseAccountDecision(raw string) (AccountDecision, error) {
	switch AccountDecision(strings.ToLower(strings.TrimSpace(raw))) {
	case DecisionApprove:
		return DecisionApprove, nil
	case DecisionReject:
		return DecisionReject, nil
	default:
		return "", ErrAccountDecisionInvalid
	}
}

// AccountOutcome is returned by state changes that may issue credentials. Credentials are
// only set when they were generated by this call and are never stored in plaintext.
type AccountOutcome struct {
	User        models.User
	Credentials *IssuedCredentials
	NotifyErr   error
}

type AccountService struct {
	users    AccountUserRepository
	sessions SessionRevoker
	notifier CredentialsNotifier
	now      func() time.Time
}

func NewAccountService(users AccountUserRepository, sessions SessionRevoker, notifier CredentialsNotifier) *AccountService {
	return &AccountService{
		users:    users,
		sessions: sessions,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RequestAccount registers a pending account. No row is created when any identity is taken.
func (service *AccountService) RequestAccount(request AccountRequest) (uint, error) {
	name := NormalizeDisplayName(request.Name)
	if name == "" {
		return 0, ErrAccountNameRequired
	}
	email := NormalizeAuthEmail(request.Email)
	if email == "" {
		return 0, ErrAccountEmailInvalid
	}
	school := strings.TrimSpace(request.School)
	if school == "" {
		return 0, ErrAccountSchoolRequired
	}
	role, ok := models.ParseRole(request.Role)
	if !ok || role == models.RoleAdmin {
		return 0, ErrAccountRoleInvalid
	}
	username, err := NormalizeUsername(request.Username)
	if err != nil {
		return 0, err
	}
	startDate := strings.TrimSpace(request.StartDate)
	if startDate == "" {
		startDate = service.now().Format(models.DateLayout)
	} else if _, err := time.Parse(models.DateLayout, startDate); err != nil {
		return 0, validationError("start date must be YYYY-MM-DD")
	}

	if err := service.ensureIdentityAvailable(name, email, username); err != nil {
		return 0, err
	}

	user := models.User{
		Name:      name,
		Email:     email,
		School:    school,
		Role:      role,
		Status:    models.StatusPendingApproval,
		StartDate: startDate,
		CreatedAt: service.now(),
	}
	if username != "" {
		user.Username = &username
	}
	if err := service.users.Create(&user); err != nil {
		if db.IsUniqueViolation(err) {
			return 0, duplicateIdentityError("name, email or username")
		}
		return 0, fmt.Errorf("create account request: %w", err)
	}
	return user.ID, nil
}

func (service *AccountService) ensureIdentityAvailable(name string, email string, username string) error {
	exists, err := service.users.ExistsByNormalizedEmail(email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return duplicateIdentityError("email")
	}

	if username != "" {
		exists, err = service.users.ExistsByNormalizedUsername(username)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if exists {
			return duplicateIdentityError("username")
		}
	}

	exists, err = service.users.ExistsByNormalizedName(strings.ToLower(name))
	if err != nil {
		return fmt.Errorf("check name: %w", err)
	}
	if exists {
		return duplicateIdentityError("name")
	}
	return nil
}

// DecideAccount approves or rejects a pending account. requestedUsername overrides the
// username chosen at registration; when both are empty one is generated from the name.
func (service *AccountService) DecideAccount(ctx context.Context, caller Caller, userID uint, decision AccountDecision, requestedUsername string) (AccountOutcome, error) {
	if err := AuthorizeManageAccounts(caller); err != nil {
		return AccountOutcome{}, err
	}
	if decision != DecisionApprove && decision != DecisionReject {
		return AccountOutcome{}, ErrAccountDecisionInvalid
	}
	override, err := NormalizeUsername(requestedUsername)
	if err != nil {
		return AccountOutcome{}, err
	}

	user, err := service.findUser(userID)
	if err != nil {
		return AccountOutcome{}, err
	}
	if user.Status != models.StatusPendingApproval {
		return AccountOutcome{}, notFoundError("pending account")
	}

	if decision == DecisionReject {
		changed, err := service.users.RejectPending(user.ID)
		if err != nil {
			return AccountOutcome{}, fmt.Errorf("reject account: %w", err)
		}
		if !changed {
			return AccountOutcome{}, notFoundError("pending account")
		}
		user.Status = models.StatusInactive
		return AccountOutcome{User: user}, nil
	}

	preferred := override
	if preferred == "" {
		preferred = user.UsernameValue()
	}
	credentials, err := service.issueCredentials(user, preferred, service.users.ActivatePending)
	if err != nil {
		return AccountOutcome{}, err
	}

	user.Status = models.StatusActive
	user.Username = &credentials.Username
	user.MustChangePassword = true
	return service.deliver(ctx, user, credentials), nil
}

func (service *AccountService) DeactivateUser(caller Caller, userID uint) (models.User, error) {
	if err := AuthorizeManageAccounts(caller); err != nil {
		return models.User{}, err
	}
	if userID == caller.UserID {
		return models.User{}, ErrCannotDeactivateSelf
	}

	user, err := service.findUser(userID)
	if err != nil {
		return models.User{}, err
	}
	if user.Status != models.StatusActive {
		return models.User{}, validationError("only active users can be deactivated")
	}

	changed, err := service.users.Deactivate(user.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("deactivate user: %w", err)
	}
	if !changed {
		return models.User{}, validationError("only active users can be deactivated")
	}
	if service.sessions != nil {
		service.sessions.RevokeUser(user.ID)
	}
	user.Status = models.StatusInactive
	return user, nil
}

// ReactivateUser re-approves an inactive user. Users rejected before ever receiving
// credentials get them now, exactly as on approval.
func (service *AccountService) ReactivateUser(ctx context.Context, caller Caller, userID uint) (AccountOutcome, error) {
	if err := AuthorizeManageAccounts(caller); err != nil {
		return AccountOutcome{}, err
	}

	user, err := service.findUser(userID)
	if err != nil {
		return AccountOutcome{}, err
	}
	if user.Status != models.StatusInactive {
		return AccountOutcome{}, validationError("only inactive users can be reactivated")
	}

	if user.HasCredentials() {
		changed, err := service.users.Reactivate(user.ID, "", "")
		if err != nil {
			return AccountOutcome{}, fmt.Errorf("reactivate user: %w", err)
		}
		if !changed {
			return AccountOutcome{}, validationError("only inactive users can be reactivated")
		}
		user.Status = models.StatusActive
		return AccountOutcome{User: user}, nil
	}

	credentials, err := service.issueCredentials(user, user.UsernameValue(), service.users.Reactivate)
	if err != nil {
		return AccountOutcome{}, err
	}
	user.Status = models.StatusActive
	user.Username = &credentials.Username
	user.MustChangePassword = true
	return service.deliver(ctx, user, credentials), nil
}

type credentialTransition func(userID uint, username string, passwordHash string) (bool, error)

// issueCredentials generates a temporary password and applies the transition with a username.
// A preferred username that is taken is a DuplicateIdentity; generated ones are retried.
func (service *AccountService) issueCredentials(user models.User, preferred string, transition credentialTransition) (IssuedCredentials, error) {
	password, err := GenerateTemporaryPassword(TemporaryPasswordLength)
	if err != nil {
		return IssuedCredentials{}, err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return IssuedCredentials{}, fmt.Errorf("hash temporary password: %w", err)
	}

	for attempt := 0; attempt < usernameGenerationAttempts; attempt++ {
		username := preferred
		if username == "" {
			username, err = GenerateUsernameCandidate(user.Name)
			if err != nil {
				return IssuedCredentials{}, err
			}
		}

		if username != user.UsernameValue() {
			taken, err := service.users.ExistsByNormalizedUsername(username)
			if err != nil {
				return IssuedCredentials{}, fmt.Errorf("check username: %w", err)
			}
			if taken {
				if preferred != "" {
					return IssuedCredentials{}, duplicateIdentityError("username")
				}
				continue
			}
		}

		changed, err := transition(user.ID, username, string(passwordHash))
		if db.IsUniqueViolation(err) {
			if preferred != "" {
				return IssuedCredentials{}, duplicateIdentityError("username")
			}
			continue
		}
		if err != nil {
			return IssuedCredentials{}, fmt.Errorf("store credentials: %w", err)
		}
		if !changed {
			return IssuedCredentials{}, notFoundError("account in the expected state")
		}
		return IssuedCredentials{Username: username, TemporaryPassword: password}, nil
	}
	return IssuedCredentials{}, fmt.Errorf("generate username for user %d: attempts exhausted", user.ID)
}

func (service *AccountService) deliver(ctx context.Context, user models.User, credentials IssuedCredentials) AccountOutcome {
	outcome := AccountOutcome{User: user, Credentials: &credentials}
	if service.notifier != nil {
		outcome.NotifyErr = service.notifier.SendCredentials(ctx, user, credentials)
	}
	return outcome
}

// AssignLead sets or clears (nil lead) the lead intern of a core intern.
func (service *AccountService) AssignLead(caller Caller, coreInternID uint, leadInternID *uint) error {
	if err := AuthorizeManageAccounts(caller); err != nil {
		return err
	}

	core, err := service.findUser(coreInternID)
	if err != nil {
		return err
	}
	if core.Role != models.RoleCoreIntern {
		return ErrLeadAssignmentInvalid
	}

	if leadInternID != nil {
		lead, err := service.findUser(*leadInternID)
		if err != nil {
			return err
		}
		if lead.Role != models.RoleLeadIntern || !lead.IsActive() {
			return ErrLeadAssignmentInvalid
		}
	}

	if err := service.users.SetLeadIntern(core.ID, leadInternID); err != nil {
		return fmt.Errorf("assign lead intern: %w", err)
	}
	return nil
}

func (service *AccountService) ListPending(caller Caller) ([]models.User, error) {
	if err := AuthorizeManageAccounts(caller); err != nil {
		return nil, err
	}
	return service.users.ListUsers(models.UserQuery{Status: models.StatusPendingApproval})
}

func (service *AccountService) ListUsers(caller Caller, query models.UserQuery) ([]models.User, error) {
	if err := AuthorizeListUsers(caller); err != nil {
		return nil, err
	}
	return service.users.ListUsers(query)
}

// ListAssignedCoreInterns returns the active core interns of a lead. Lead interns always get
// their own; admins pick the lead.
func (service *AccountService) ListAssignedCoreInterns(caller Caller, leadInternID uint) ([]models.User, error) {
	if err := AuthorizeListAssignedInterns(caller); err != nil {
		return nil, err
	}
	if caller.IsLeadIntern() {
		if leadInternID != 0 && leadInternID != caller.UserID {
			return nil, unauthorizedError("lead interns only see their own interns")
		}
		leadInternID = caller.UserID
	}
	return service.users.ListUsers(models.UserQuery{
		Status:       models.StatusActive,
		Role:         models.RoleCoreIntern,
		LeadInternID: &leadInternID,
	})
}

func (service *AccountService) FindUser(caller Caller, userID uint) (models.User, error) {
	user, err := service.findUser(userID)
	if err != nil {
		return models.User{}, err
	}
	if caller.UserID != userID {
		if err := AuthorizeViewWorkOf(caller, user); err != nil {
			return models.User{}, err
		}
	}
	return user, nil
}

func (service *AccountService) findUser(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, notFoundError("user")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

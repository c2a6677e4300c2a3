package api

import (
	"errors"
	"time"

	"github.com/clubstride/hourtrack/internal/db"
	"github.com/clubstride/hourtrack/internal/services"
)

type Dependencies struct {
	Auth         *services.AuthService
	Accounts     *services.AccountService
	Hours        *services.HoursService
	Deliverables *services.DeliverableService
	Leads        *services.LeadService
	Reports      *services.ReportService
	Exports      *services.ExportService
	Notices      *services.NotificationService
}

// ServiceSettings tunes the services built by NewDependencies.
type ServiceSettings struct {
	SessionIdleTimeout time.Duration
	SessionLifetime    time.Duration
	LockoutThreshold   int
	LockoutWindow      time.Duration
	Location           *time.Location
	Notifier           services.CredentialsNotifier
}

// NewDependencies wires every service over one set of repositories. Sessions are shared
// between sign-in and account management so deactivation can revoke them.
func NewDependencies(repositories *db.Repositories, settings ServiceSettings) Dependencies {
	sessions := services.NewSessionStore(settings.SessionIdleTimeout, settings.SessionLifetime)
	throttle := services.NewLoginThrottle(settings.LockoutThreshold, settings.LockoutWindow)
	location := settings.Location
	if location == nil {
		location = time.UTC
	}

	return Dependencies{
		Auth:         services.NewAuthService(repositories.Users, sessions, throttle),
		Accounts:     services.NewAccountService(repositories.Users, sessions, settings.Notifier),
		Hours:        services.NewHoursService(repositories.Hours, repositories.Users, location),
		Deliverables: services.NewDeliverableService(repositories.Deliverables, repositories.Users),
		Leads:        services.NewLeadService(repositories.LeadRecords, repositories.Users, location),
		Reports:      services.NewReportService(repositories.Hours, repositories.Deliverables, repositories.Users, location),
		Exports:      services.NewExportService(repositories.Hours, repositories.Deliverables, repositories.LeadRecords, repositories.Users, location),
		Notices:      services.NewNotificationService(),
	}
}

func (dependencies Dependencies) validate() error {
	if dependencies.Auth == nil || dependencies.Accounts == nil || dependencies.Hours == nil ||
		dependencies.Deliverables == nil || dependencies.Leads == nil || dependencies.Reports == nil ||
		dependencies.Exports == nil || dependencies.Notices == nil {
		return errors.New("every service dependency is required")
	}
	return nil
}

package services_test

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/clubstride/hourtrack/internal/db"
	"github.com/clubstride/hourtrack/internal/models"
	"github.com/clubstride/hourtrack/internal/services"
)

type workflowHarness struct {
	repos        *db.Repositories
	auth         *services.AuthService
	accounts     *services.AccountService
	hours        *services.HoursService
	deliverables *services.DeliverableService
	leads        *services.LeadService
	reports      *services.ReportService
	exports      *services.ExportService
	admin        services.Caller
}

func newWorkflowHarness(t *testing.T) *workflowHarness {
	t.Helper()

	database, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "hourtrack-workflow.db"), db.DefaultBootstrapAdmin())
	if err != nil {
		t.Fatalf("open and migrate: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	repos := db.NewRepositories(database)
	sessions := services.NewSessionStore(0, 0)
	admin, err := repos.Users.FindByLoginIdentifier("admin123")
	if err != nil {
		t.Fatalf("load bootstrap admin: %v", err)
	}

	return &workflowHarness{
		repos:        repos,
		auth:         services.NewAuthService(repos.Users, sessions, services.NewLoginThrottle(0, 0)),
		accounts:     services.NewAccountService(repos.Users, sessions, nil),
		hours:        services.NewHoursService(repos.Hours, repos.Users, time.UTC),
		deliverables: services.NewDeliverableService(repos.Deliverables, repos.Users),
		leads:        services.NewLeadService(repos.LeadRecords, repos.Users, time.UTC),
		reports:      services.NewReportService(repos.Hours, repos.Deliverables, repos.Users, time.UTC),
		exports:      services.NewExportService(repos.Hours, repos.Deliverables, repos.LeadRecords, repos.Users, time.UTC),
		admin:        services.CallerFor(admin),
	}
}

// onboard registers, approves and logs in a new intern, then rotates the temporary password.
func (harness *workflowHarness) onboard(t *testing.T, name string, email string, role models.Role) services.Caller {
	t.Helper()

	userID, err := harness.accounts.RequestAccount(services.AccountRequest{
		Name:   name,
		Email:  email,
		School: "Riverside High",
		Role:   string(role),
	})
	if err != nil {
		t.Fatalf("request account %s: %v", email, err)
	}

	outcome, err := harness.accounts.DecideAccount(context.Background(), harness.admin, userID, services.DecisionApprove, "")
	if err != nil {
		t.Fatalf("approve %s: %v", email, err)
	}
	if outcome.Credentials == nil {
		t.Fatalf("expected credentials for %s", email)
	}

	user, session, err := harness.auth.Login(outcome.Credentials.Username, outcome.Credentials.TemporaryPassword, time.Now())
	if err != nil {
		t.Fatalf("login %s with temporary password: %v", email, err)
	}
	if !user.MustChangePassword {
		t.Fatalf("expected %s to be forced to change password", email)
	}
	caller := session.Caller()
	if err := harness.auth.ChangePassword(caller, outcome.Credentials.TemporaryPassword, "BrandNew9pass", "BrandNew9pass"); err != nil {
		t.Fatalf("change password for %s: %v", email, err)
	}

	refreshed, err := harness.repos.Users.FindByID(userID)
	if err != nil {
		t.Fatalf("reload %s: %v", email, err)
	}
	if refreshed.MustChangePassword {
		t.Fatalf("expected must_change_password cleared for %s", email)
	}
	return caller
}

func TestWorkflowApproveLoginSubmitReviewReport(t *testing.T) {
	harness := newWorkflowHarness(t)

	core := harness.onboard(t, "Cora Core", "cora@example.com", models.RoleCoreIntern)
	lead := harness.onboard(t, "Lee Lead", "lee@example.com", models.RoleLeadIntern)
	if err := harness.accounts.AssignLead(harness.admin, core.UserID, &lead.UserID); err != nil {
		t.Fatalf("assign lead: %v", err)
	}

	if _, err := harness.accounts.RequestAccount(services.AccountRequest{
		Name: "cora core", Email: "other@example.com", School: "x", Role: "core_intern",
	}); !errors.Is(err, services.ErrDuplicateIdentity) {
		t.Fatalf("expected duplicate name to be rejected, got %v", err)
	}

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(models.DateLayout)
	morning, err := harness.hours.Submit(core, services.HourInput{Date: yesterday, StartTime: "09:00", EndTime: "12:30", Description: "shoot"})
	if err != nil {
		t.Fatalf("submit morning hours: %v", err)
	}
	if _, err := harness.hours.Submit(core, services.HourInput{Date: yesterday, StartTime: "13:00", EndTime: "14:20", Description: "edit"}); err != nil {
		t.Fatalf("submit afternoon hours: %v", err)
	}
	if _, err := harness.hours.Review(core, morning.ID, services.ReviewApprove); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("core reviewing own hours: expected ErrUnauthorized, got %v", err)
	}
	if _, err := harness.hours.Review(harness.admin, morning.ID, services.ReviewApprove); err != nil {
		t.Fatalf("approve hours: %v", err)
	}
	if _, err := harness.hours.Review(harness.admin, morning.ID, services.ReviewReject); !errors.Is(err, services.ErrAlreadyReviewed) {
		t.Fatalf("second decision: expected ErrAlreadyReviewed, got %v", err)
	}

	report, err := harness.reports.UserReport(lead, core.UserID, "", "")
	if err != nil {
		t.Fatalf("lead reading assigned intern report: %v", err)
	}
	if report.ApprovedHours != 3.5 || report.PendingHours != 1.33 || report.TotalHours != 4.83 {
		t.Fatalf("unexpected report totals: %#v", report)
	}

	table, err := harness.exports.Build(core, services.ExportRequest{Kind: services.ExportHours})
	if err != nil {
		t.Fatalf("build hours export: %v", err)
	}
	payload, err := services.EncodeCSV(table)
	if err != nil {
		t.Fatalf("encode hours export: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(payload))).ReadAll()
	if err != nil {
		t.Fatalf("decode hours export: %v", err)
	}
	approvedSum := 0.0
	for _, record := range records[1:] {
		if record[7] != "true" {
			continue
		}
		value, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			t.Fatalf("parse total_hours %q: %v", record[5], err)
		}
		approvedSum += value
	}
	if fmt.Sprintf("%.2f", approvedSum) != fmt.Sprintf("%.2f", report.ApprovedHours) {
		t.Fatalf("csv re-sum %.2f does not match report %.2f", approvedSum, report.ApprovedHours)
	}
}

func TestWorkflowDeliverableRevisionAndLeadRecords(t *testing.T) {
	harness := newWorkflowHarness(t)

	core := harness.onboard(t, "Cora Core", "cora@example.com", models.RoleCoreIntern)
	lead := harness.onboard(t, "Lee Lead", "lee@example.com", models.RoleLeadIntern)
	if err := harness.accounts.AssignLead(harness.admin, core.UserID, &lead.UserID); err != nil {
		t.Fatalf("assign lead: %v", err)
	}

	deliverable, err := harness.deliverables.Submit(core, services.DeliverableInput{
		Type:        "reel",
		Description: "Open day reel",
		Links:       "https://example.com/reel",
	})
	if err != nil {
		t.Fatalf("submit deliverable: %v", err)
	}
	if _, err := harness.deliverables.Review(lead, deliverable.ID, services.ReviewApprove, ""); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("lead approving: expected ErrUnauthorized, got %v", err)
	}
	if _, err := harness.deliverables.Review(harness.admin, deliverable.ID, services.ReviewNeedsRevision, "add subtitles"); err != nil {
		t.Fatalf("request revision: %v", err)
	}

	visible, err := harness.deliverables.Get(core, deliverable.ID)
	if err != nil {
		t.Fatalf("owner reading deliverable: %v", err)
	}
	if visible.AdminComment != "add subtitles" {
		t.Fatalf("expected the revision comment to be visible, got %q", visible.AdminComment)
	}

	resubmitted, err := harness.deliverables.Resubmit(core, deliverable.ID, &services.DeliverableInput{Links: "https://example.com/reel-v2"})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.Status != models.DeliverablePending || resubmitted.AdminComment != "" {
		t.Fatalf("expected pending with hidden comment, got %#v", resubmitted)
	}
	if len(resubmitted.Links) != 1 || resubmitted.Links[0] != "https://example.com/reel-v2" {
		t.Fatalf("expected replaced links, got %#v", resubmitted.Links)
	}

	history, err := harness.deliverables.History(lead, deliverable.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].Comment != "add subtitles" {
		t.Fatalf("unexpected history: %#v", history)
	}

	review, err := harness.leads.CreateReview(lead, services.CoreReviewInput{
		CoreInternID: core.UserID,
		ReviewPeriod: "Week 1",
		OverallVibe:  "getting_there",
		WhatsWorking: "Great ideas",
		GrowthAreas:  "Deadlines",
	})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	if _, err := harness.leads.UpdateReview(harness.admin, review.ID, services.CoreReviewInput{}); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("admin editing review: expected ErrUnauthorized, got %v", err)
	}

	reviews, err := harness.leads.ListReviews(harness.admin, models.LeadRecordQuery{CoreInternID: core.UserID})
	if err != nil {
		t.Fatalf("admin listing reviews: %v", err)
	}
	if len(reviews) != 1 || reviews[0].LeadInternID != lead.UserID {
		t.Fatalf("unexpected reviews: %#v", reviews)
	}
}

func TestWorkflowDeactivatedUserLosesSession(t *testing.T) {
	harness := newWorkflowHarness(t)
	core := harness.onboard(t, "Cora Core", "cora@example.com", models.RoleCoreIntern)

	user, err := harness.repos.Users.FindByID(core.UserID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	_, session, err := harness.auth.Login(user.UsernameValue(), "BrandNew9pass", time.Now())
	if err != nil {
		t.Fatalf("login with rotated password: %v", err)
	}

	if _, err := harness.accounts.DeactivateUser(harness.admin, core.UserID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, _, err := harness.auth.Authenticate(session.Token, time.Now()); err == nil {
		t.Fatal("expected session to be rejected after deactivation")
	}
	if _, _, err := harness.auth.Login(user.UsernameValue(), "BrandNew9pass", time.Now()); !errors.Is(err, services.ErrInvalidCredentials) {
		t.Fatalf("expected inactive login to fail, got %v", err)
	}
}

package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/clubstride/hourtrack/internal/models"
	"github.com/clubstride/hourtrack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

var errTooManyRequests = fmt.Errorf("%w: too many requests, slow down", services.ErrRateLimited)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	registerPageRoutes(app, handler)
	registerAPIRoutes(app, handler)
	app.Use(handler.NotFound)
}

func registerPageRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)
	app.Get("/lang/:lang", handler.SetLanguage)

	app.Get("/login", handler.ShowLoginPage)
	app.Get("/register", handler.ShowRegisterPage)
	app.Get("/change-password", handler.AuthRequired, handler.ShowChangePasswordPage)
	app.Get("/", handler.AuthRequired, handler.PasswordChangeGate, handler.ShowDashboard)
	app.Get("/dashboard", handler.AuthRequired, handler.PasswordChangeGate, handler.ShowDashboard)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", handler.authRateLimit(), handler.Login)
	auth.Post("/register", handler.authRateLimit(), handler.Register)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Post("/change-password", handler.AuthRequired, handler.ChangePassword)

	api.Get("/me", handler.AuthRequired, handler.Me)

	signedIn := api.Group("", handler.AuthRequired, handler.PasswordChangeGate)

	accounts := signedIn.Group("/accounts", handler.RequireRole(models.RoleAdmin))
	accounts.Get("/pending", handler.ListPendingAccounts)
	accounts.Post("/:id/decision", handler.DecideAccount)
	accounts.Post("/:id/deactivate", handler.DeactivateAccount)
	accounts.Post("/:id/reactivate", handler.ReactivateAccount)
	accounts.Put("/:id/lead", handler.AssignLead)

	users := signedIn.Group("/users", handler.RequireRole(models.RoleAdmin, models.RoleLeadIntern))
	users.Get("", handler.RequireRole(models.RoleAdmin), handler.ListUsers)
	users.Get("/:id", handler.GetUser)
	signedIn.Get("/leads/:id/interns", handler.RequireRole(models.RoleAdmin, models.RoleLeadIntern), handler.ListLeadInterns)

	hours := signedIn.Group("/hours")
	hours.Get("", handler.ListHours)
	hours.Post("", handler.SubmitHours)
	hours.Post("/:id/review", handler.ReviewHours)

	deliverables := signedIn.Group("/deliverables")
	deliverables.Get("", handler.ListDeliverables)
	deliverables.Post("", handler.SubmitDeliverable)
	deliverables.Get("/:id", handler.GetDeliverable)
	deliverables.Post("/:id/review", handler.ReviewDeliverable)
	deliverables.Post("/:id/resubmit", handler.ResubmitDeliverable)
	deliverables.Get("/:id/history", handler.DeliverableHistory)

	lead := signedIn.Group("/lead", handler.RequireRole(models.RoleLeadIntern, models.RoleAdmin))
	lead.Get("/reviews", handler.ListReviews)
	lead.Post("/reviews", handler.CreateReview)
	lead.Put("/reviews/:id", handler.UpdateReview)
	lead.Get("/plans", handler.ListSupportPlans)
	lead.Post("/plans", handler.CreateSupportPlan)
	lead.Put("/plans/:id", handler.UpdateSupportPlan)
	lead.Post("/plans/:id/status", handler.UpdateSupportPlanStatus)
	lead.Get("/wins", handler.ListWins)
	lead.Post("/wins", handler.AddWin)
	lead.Post("/wins/:id/celebrated", handler.MarkWinCelebrated)

	reports := signedIn.Group("/reports")
	reports.Get("/users/:id", handler.UserReport)
	reports.Get("/team", handler.TeamReport)

	signedIn.Get("/export/:kind", handler.ExportCSV)
}

// authRateLimit caps sign-in and registration posts per client IP. A non-positive limit
// disables it.
func (handler *Handler) authRateLimit() fiber.Handler {
	if handler.authRequestsPerMinute <= 0 {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}
	return limiter.New(limiter.Config{
		Max:        handler.authRequestsPerMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + c.Path()
		},
		LimitReached: func(c *fiber.Ctx) error {
			handler.logger.Warn("auth rate limit reached", "ip", c.IP(), "path", c.Path())
			return handler.respondFormError(c, errTooManyRequests, strings.TrimPrefix(c.Path(), "/api/auth"), FlashPayload{})
		},
	})
}

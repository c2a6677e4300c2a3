package api

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"time"

	"github.com/clubstride/hourtrack/internal/i18n"
	"github.com/clubstride/hourtrack/internal/services"
)

type Handler struct {
	auth         *services.AuthService
	accounts     *services.AccountService
	hours        *services.HoursService
	deliverables *services.DeliverableService
	leads        *services.LeadService
	reports      *services.ReportService
	exports      *services.ExportService
	notices      *services.NotificationService

	secretKey             []byte
	cookieCodec           *secureCookieCodec
	cookieSecure          bool
	authRequestsPerMinute int
	location              *time.Location
	i18n                  *i18n.Manager
	templates             map[string]*template.Template
	logger                *slog.Logger
	now                   func() time.Time
}

// Options carries the presentation settings that do not come from the services.
type Options struct {
	SecretKey             string
	CookieSecure          bool
	AuthRequestsPerMinute int
	Location              *time.Location
	I18n                  *i18n.Manager
	Templates             fs.FS
	Logger                *slog.Logger
}

func NewHandler(dependencies Dependencies, options Options) (*Handler, error) {
	if err := dependencies.validate(); err != nil {
		return nil, err
	}
	if options.I18n == nil {
		return nil, errors.New("i18n manager is required")
	}
	if options.Templates == nil {
		return nil, errors.New("templates are required")
	}

	codec, err := newSecureCookieCodec([]byte(options.SecretKey))
	if err != nil {
		return nil, err
	}

	templates, err := parsePageTemplates(options.Templates, newTemplateFuncMap(), pageTemplates)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	location := options.Location
	if location == nil {
		location = time.UTC
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		auth:                  dependencies.Auth,
		accounts:              dependencies.Accounts,
		hours:                 dependencies.Hours,
		deliverables:          dependencies.Deliverables,
		leads:                 dependencies.Leads,
		reports:               dependencies.Reports,
		exports:               dependencies.Exports,
		notices:               dependencies.Notices,
		secretKey:             []byte(options.SecretKey),
		cookieCodec:           codec,
		cookieSecure:          options.CookieSecure,
		authRequestsPerMinute: options.AuthRequestsPerMinute,
		location:              location,
		i18n:                  options.I18n,
		templates:             templates,
		logger:                logger,
		now:                   time.Now,
	}, nil
}

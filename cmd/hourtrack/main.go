package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/clubstride/hourtrack/internal/api"
	"github.com/clubstride/hourtrack/internal/cli"
	"github.com/clubstride/hourtrack/internal/config"
	"github.com/clubstride/hourtrack/internal/db"
	"github.com/clubstride/hourtrack/internal/i18n"
	"github.com/clubstride/hourtrack/internal/logging"
	"github.com/clubstride/hourtrack/internal/mailer"
	"github.com/clubstride/hourtrack/internal/services"
	"github.com/clubstride/hourtrack/internal/templates"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/pflag"
)

const (
	commandServe         = "serve"
	commandMigrate       = "migrate"
	commandResetPassword = "reset-password"

	sessionPruneInterval = time.Minute
	shutdownTimeout      = 10 * time.Second
)

type commandOptions struct {
	name       string
	configPath string
	username   string
	prompt     bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "hourtrack: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	options, err := parseCommand(args, out)
	if err != nil {
		return err
	}

	cfg, err := config.Load(options.configPath)
	if err != nil {
		return err
	}

	switch options.name {
	case commandMigrate:
		return cli.RunMigrateCommand(cfg.Database.Path, bootstrapAdmin(cfg), out)
	case commandResetPassword:
		resetOptions := cli.ResetPasswordOptions{Username: options.username}
		if options.prompt {
			password, err := cli.PromptNewPassword(os.Stdin, out)
			if err != nil {
				return err
			}
			resetOptions.Password = password
		}
		return cli.RunResetPasswordCommand(cfg.Database.Path, resetOptions, out)
	default:
		return serve(cfg)
	}
}

// parseCommand splits the optional leading subcommand from its flags. serve is the default.
func parseCommand(args []string, out io.Writer) (commandOptions, error) {
	options := commandOptions{name: commandServe}
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		options.name = args[0]
		args = args[1:]
	}
	switch options.name {
	case commandServe, commandMigrate, commandResetPassword:
	default:
		return commandOptions{}, fmt.Errorf("unknown command %q (want serve, migrate or reset-password)", options.name)
	}

	flagSet := pflag.NewFlagSet("hourtrack "+options.name, pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVar(&options.configPath, "config", "", "path to a YAML config file (defaults to $"+config.ConfigPathEnv+")")
	if options.name == commandResetPassword {
		flagSet.StringVar(&options.username, "username", "", "username or email of the account to reset")
		flagSet.BoolVar(&options.prompt, "prompt", false, "prompt for the new password instead of generating one")
	}
	if err := flagSet.Parse(args); err != nil {
		return commandOptions{}, err
	}
	if flagSet.NArg() > 0 {
		return commandOptions{}, fmt.Errorf("unexpected arguments: %s", strings.Join(flagSet.Args(), " "))
	}
	if options.name == commandResetPassword && strings.TrimSpace(options.username) == "" {
		return commandOptions{}, errors.New("reset-password requires --username")
	}
	return options, nil
}

func serve(cfg config.Config) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	slog.SetDefault(logger)

	location := cfg.Location()
	time.Local = location

	app, dependencies, closeDB, err := newServer(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	port, err := config.ParsePort(cfg.Server.Port)
	if err != nil {
		return err
	}

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()
	go pruneExpired(lifecycleCtx, dependencies.Auth, sessionPruneInterval, logger)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("hourtrack listening",
		"addr", "0.0.0.0:"+port,
		"db", cfg.Database.Path,
		"tz", location.String(),
		"smtp", cfg.SMTP.Enabled(),
	)
	if err := app.Listen(":" + port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

// newServer opens the store, applies migrations and builds the Fiber app. The returned
// func closes the database.
func newServer(cfg config.Config, logger *slog.Logger) (*fiber.App, api.Dependencies, func(), error) {
	secretKey, err := cfg.SecretKey()
	if err != nil {
		return nil, api.Dependencies{}, nil, err
	}

	database, err := db.OpenAndMigrate(cfg.Database.Path, bootstrapAdmin(cfg))
	if err != nil {
		return nil, api.Dependencies{}, nil, fmt.Errorf("database init failed: %w", err)
	}
	closeDB := func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	i18nManager, err := i18n.NewEmbeddedManager(cfg.Locale.DefaultLanguage)
	if err != nil {
		closeDB()
		return nil, api.Dependencies{}, nil, fmt.Errorf("i18n init failed: %w", err)
	}

	location := cfg.Location()
	dependencies := api.NewDependencies(db.NewRepositories(database), api.ServiceSettings{
		SessionIdleTimeout: cfg.Auth.SessionIdleTimeout,
		SessionLifetime:    cfg.Auth.SessionLifetime,
		LockoutThreshold:   cfg.Auth.LockoutThreshold,
		LockoutWindow:      cfg.Auth.LockoutWindow,
		Location:           location,
		Notifier:           mailer.New(cfg.SMTP),
	})

	handler, err := api.NewHandler(dependencies, api.Options{
		SecretKey:             secretKey,
		CookieSecure:          cfg.Server.CookieSecure,
		AuthRequestsPerMinute: cfg.Server.AuthRequestsPerMinute,
		Location:              location,
		I18n:                  i18nManager,
		Templates:             templates.FS,
		Logger:                logger,
	})
	if err != nil {
		closeDB()
		return nil, api.Dependencies{}, nil, fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Hourtrack",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())
	app.Use(handler.LanguageMiddleware)
	app.Use(csrf.New(csrfMiddlewareConfig(cfg.Server.CookieSecure)))

	api.RegisterRoutes(app, handler)
	return app, dependencies, closeDB, nil
}

// csrfMiddlewareConfig guards browser form posts. Requests with a JSON body skip the check.
func csrfMiddlewareConfig(cookieSecure bool) csrf.Config {
	return csrf.Config{
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON)
		},
		KeyLookup:      "form:csrf_token",
		CookieName:     "hourtrack_csrf",
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		CookieSecure:   cookieSecure,
		ContextKey:     "csrf",
	}
}

func bootstrapAdmin(cfg config.Config) db.BootstrapAdmin {
	return db.BootstrapAdmin{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
	}
}

// pruneExpired drops idle sessions and stale login failures until ctx is done.
func pruneExpired(ctx context.Context, auth *services.AuthService, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := auth.Sessions().Prune(now); removed > 0 {
				logger.Debug("pruned expired sessions", "count", removed)
			}
			if removed := auth.Throttle().Prune(now); removed > 0 {
				logger.Debug("pruned stale login failures", "count", removed)
			}
		}
	}
}

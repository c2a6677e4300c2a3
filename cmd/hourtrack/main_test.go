package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clubstride/hourtrack/internal/config"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    commandOptions
		wantErr bool
	}{
		{name: "default serve", args: nil, want: commandOptions{name: commandServe}},
		{name: "serve with config", args: []string{"--config", "/etc/hourtrack.yaml"}, want: commandOptions{name: commandServe, configPath: "/etc/hourtrack.yaml"}},
		{name: "migrate", args: []string{"migrate"}, want: commandOptions{name: commandMigrate}},
		{name: "reset with prompt", args: []string{"reset-password", "--username", "admin123", "--prompt"}, want: commandOptions{name: commandResetPassword, username: "admin123", prompt: true}},
		{name: "reset without username", args: []string{"reset-password"}, wantErr: true},
		{name: "username outside reset", args: []string{"migrate", "--username", "admin123"}, wantErr: true},
		{name: "unknown command", args: []string{"backup"}, wantErr: true},
		{name: "stray argument", args: []string{"migrate", "extra"}, wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := parseCommand(testCase.args, io.Discard)
			if testCase.wantErr {
				if err == nil {
					t.Fatalf("expected error for %v", testCase.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != testCase.want {
				t.Fatalf("expected %#v, got %#v", testCase.want, got)
			}
		})
	}
}

func TestCSRFMiddlewareConfigUsesCookieSecureFlag(t *testing.T) {
	secureConfig := csrfMiddlewareConfig(true)
	if !secureConfig.CookieSecure {
		t.Fatal("expected csrf cookie secure flag to be enabled")
	}
	if !secureConfig.CookieHTTPOnly {
		t.Fatal("expected csrf cookie to be httpOnly")
	}
	if secureConfig.CookieName != "hourtrack_csrf" {
		t.Fatalf("expected csrf cookie name hourtrack_csrf, got %q", secureConfig.CookieName)
	}
	if secureConfig.KeyLookup != "form:csrf_token" {
		t.Fatalf("expected csrf key lookup form:csrf_token, got %q", secureConfig.KeyLookup)
	}

	insecureConfig := csrfMiddlewareConfig(false)
	if insecureConfig.CookieSecure {
		t.Fatal("expected csrf cookie secure flag to be disabled")
	}
}

func TestNewServerRejectsWeakSecret(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "hourtrack.db")
	cfg.Auth.SecretKey = "too-short-secret"

	if _, _, _, err := newServer(cfg, discardLogger()); err == nil {
		t.Fatal("expected a short secret key to be rejected")
	}
}

func TestNewServerGuardsFormPostsWithCSRF(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "hourtrack.db")
	cfg.Auth.SecretKey = testSecretKey

	app, dependencies, closeDB, err := newServer(cfg, discardLogger())
	if err != nil {
		t.Fatalf("newServer() unexpected error: %v", err)
	}
	t.Cleanup(closeDB)
	if dependencies.Auth == nil {
		t.Fatal("expected auth service to be wired")
	}

	health, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Fatalf("expected health 200, got %d", health.StatusCode)
	}

	jsonLogin := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"identifier":"admin123","password":"admin123456"}`))
	jsonLogin.Header.Set("Content-Type", "application/json")
	jsonLogin.Header.Set("Accept", "application/json")
	jsonResponse, err := app.Test(jsonLogin, -1)
	if err != nil {
		t.Fatalf("json login failed: %v", err)
	}
	jsonResponse.Body.Close()
	if jsonResponse.StatusCode != http.StatusOK {
		t.Fatalf("expected json login without csrf token to succeed, got %d", jsonResponse.StatusCode)
	}

	form := url.Values{"identifier": {"admin123"}, "password": {"admin123456"}}
	unguarded := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	unguarded.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	unguardedResponse, err := app.Test(unguarded, -1)
	if err != nil {
		t.Fatalf("form login failed: %v", err)
	}
	unguardedResponse.Body.Close()
	if unguardedResponse.StatusCode != http.StatusForbidden {
		t.Fatalf("expected form post without csrf token to be forbidden, got %d", unguardedResponse.StatusCode)
	}

	page, err := app.Test(httptest.NewRequest(http.MethodGet, "/login", nil), -1)
	if err != nil {
		t.Fatalf("login page failed: %v", err)
	}
	page.Body.Close()
	var csrfCookie *http.Cookie
	for _, cookie := range page.Cookies() {
		if cookie.Name == "hourtrack_csrf" {
			csrfCookie = cookie
		}
	}
	if csrfCookie == nil || csrfCookie.Value == "" {
		t.Fatal("expected login page to issue a csrf cookie")
	}

	form.Set("csrf_token", csrfCookie.Value)
	guarded := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	guarded.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	guarded.Header.Set("Cookie", "hourtrack_csrf="+csrfCookie.Value)
	guardedResponse, err := app.Test(guarded, -1)
	if err != nil {
		t.Fatalf("guarded form login failed: %v", err)
	}
	guardedResponse.Body.Close()
	if guardedResponse.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected form login redirect, got %d", guardedResponse.StatusCode)
	}
	if location := guardedResponse.Header.Get("Location"); location != "/change-password" {
		t.Fatalf("expected seeded admin to be sent to /change-password, got %q", location)
	}
}

func TestRunMigrateThenResetPassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "hourtrack.db")
	t.Setenv(config.ConfigPathEnv, "")
	t.Setenv("DB_PATH", dbPath)

	var migrateOutput bytes.Buffer
	if err := run([]string{"migrate"}, &migrateOutput); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(migrateOutput.String(), "Created bootstrap admin admin123") {
		t.Fatalf("unexpected migrate output: %s", migrateOutput.String())
	}

	var resetOutput bytes.Buffer
	if err := run([]string{"reset-password", "--username", "admin123"}, &resetOutput); err != nil {
		t.Fatalf("reset-password failed: %v", err)
	}
	if !strings.Contains(resetOutput.String(), "Temporary password: ") {
		t.Fatalf("expected a generated password, got %s", resetOutput.String())
	}

	if err := run([]string{"reset-password", "--username", "nobody"}, io.Discard); err == nil {
		t.Fatal("expected reset of an unknown user to fail")
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

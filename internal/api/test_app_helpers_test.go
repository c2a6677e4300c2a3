package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/clubstride/hourtrack/internal/db"
	"github.com/clubstride/hourtrack/internal/i18n"
	"github.com/clubstride/hourtrack/internal/templates"
	"github.com/gofiber/fiber/v2"
)

const (
	testSecretKey           = "0123456789abcdef0123456789abcdef"
	testAdminIdentifier     = "admin123"
	testAdminSeedPassword   = "admin123456"
	testRotatedPassword     = "Sup3rSecret9"
	testInternFinalPassword = "Intern9pass"
)

type testApp struct {
	app     *fiber.App
	handler *Handler
	repos   *db.Repositories
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithOptions(t, 0)
}

func newTestAppWithOptions(t *testing.T, authRequestsPerMinute int) *testApp {
	t.Helper()

	database, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "hourtrack-api.db"), db.DefaultBootstrapAdmin())
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

	manager, err := i18n.NewEmbeddedManager("en")
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}

	repos := db.NewRepositories(database)
	handler, err := NewHandler(NewDependencies(repos, ServiceSettings{Location: time.UTC}), Options{
		SecretKey:             testSecretKey,
		AuthRequestsPerMinute: authRequestsPerMinute,
		Location:              time.UTC,
		I18n:                  manager,
		Templates:             templates.FS,
		Logger:                discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewHandler() unexpected error: %v", err)
	}

	app := fiber.New()
	app.Use(handler.LanguageMiddleware)
	RegisterRoutes(app, handler)
	return &testApp{app: app, handler: handler, repos: repos}
}

func (harness *testApp) do(t *testing.T, method string, path string, authCookie string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if authCookie != "" {
		request.Header.Set("Cookie", authCookie)
	}

	response, err := harness.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func (harness *testApp) postForm(t *testing.T, path string, cookie string, form string) *http.Response {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}
	response, err := harness.app.Test(request, -1)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return response
}

func (harness *testApp) get(t *testing.T, path string, cookie string) *http.Response {
	t.Helper()

	request := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}
	response, err := harness.app.Test(request, -1)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return response
}

// login signs in through the JSON endpoint and returns the session cookie header.
func (harness *testApp) login(t *testing.T, identifier string, password string) string {
	t.Helper()

	response := harness.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"identifier": identifier,
		"password":   password,
	})
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", identifier, response.StatusCode)
	}
	cookie := responseCookie(response.Cookies(), authCookieName)
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("login %s: expected session cookie", identifier)
	}
	return authCookieName + "=" + cookie.Value
}

func (harness *testApp) changePassword(t *testing.T, authCookie string, current string, next string) {
	t.Helper()

	response := harness.do(t, http.MethodPost, "/api/auth/change-password", authCookie, map[string]string{
		"current_password": current,
		"new_password":     next,
		"confirm_password": next,
	})
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("change password: expected 200, got %d", response.StatusCode)
	}
}

// adminSession signs in the bootstrap admin and rotates the seeded password.
func (harness *testApp) adminSession(t *testing.T) string {
	t.Helper()

	cookie := harness.login(t, testAdminIdentifier, testAdminSeedPassword)
	harness.changePassword(t, cookie, testAdminSeedPassword, testRotatedPassword)
	return cookie
}

type issuedCredentials struct {
	Username          string `json:"username"`
	TemporaryPassword string `json:"temporary_password"`
}

// onboardIntern requests an account, approves it as admin and signs the intern in with a
// rotated password. It returns the intern's id and session cookie.
func (harness *testApp) onboardIntern(t *testing.T, adminCookie string, name string, email string, role string) (uint, string) {
	t.Helper()

	response := harness.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":   name,
		"email":  email,
		"school": "Riverside High",
		"role":   role,
	})
	created := struct {
		ID uint `json:"id"`
	}{}
	decodeJSON(t, response, http.StatusCreated, &created)

	response = harness.do(t, http.MethodPost, "/api/accounts/"+uintString(created.ID)+"/decision", adminCookie, map[string]string{
		"decision": "approve",
	})
	decided := struct {
		Credentials issuedCredentials `json:"credentials"`
	}{}
	decodeJSON(t, response, http.StatusOK, &decided)
	if decided.Credentials.Username == "" || decided.Credentials.TemporaryPassword == "" {
		t.Fatalf("expected credentials for %s, got %#v", email, decided.Credentials)
	}

	cookie := harness.login(t, decided.Credentials.Username, decided.Credentials.TemporaryPassword)
	harness.changePassword(t, cookie, decided.Credentials.TemporaryPassword, testInternFinalPassword)
	return created.ID, cookie
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action"`
	Reason  string `json:"reason"`
}

func readErrorBody(t *testing.T, response *http.Response, expectedStatus int) errorBody {
	t.Helper()
	body := errorBody{}
	decodeJSON(t, response, expectedStatus, &body)
	return body
}

func decodeJSON(t *testing.T, response *http.Response, expectedStatus int, target any) {
	t.Helper()
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if response.StatusCode != expectedStatus {
		t.Fatalf("expected status %d, got %d: %s", expectedStatus, response.StatusCode, payload)
	}
	if err := json.Unmarshal(payload, target); err != nil {
		t.Fatalf("decode response body %s: %v", payload, err)
	}
}

func readBody(t *testing.T, response *http.Response) string {
	t.Helper()
	defer response.Body.Close()
	payload, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return string(payload)
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie != nil && cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func uintString(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

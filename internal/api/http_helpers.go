package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/clubstride/hourtrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

func acceptsJSON(c *fiber.Ctx) bool {
	return strings.Contains(strings.ToLower(c.Get(fiber.HeaderAccept)), fiber.MIMEApplicationJSON)
}

// isFormSubmission reports whether the request is a plain browser form post.
func isFormSubmission(c *fiber.Ctx) bool {
	if acceptsJSON(c) {
		return false
	}
	contentType := strings.ToLower(c.Get(fiber.HeaderContentType))
	return strings.HasPrefix(contentType, fiber.MIMEApplicationForm) ||
		strings.HasPrefix(contentType, fiber.MIMEMultipartForm)
}

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals("csrf").(string)
	return token
}

func localizedPageTitle(messages map[string]string, key string, fallback string) string {
	title := translateMessage(messages, key)
	if title == key || strings.TrimSpace(title) == "" {
		return fallback
	}
	return title
}

func sanitizeRedirectPath(raw string, fallback string) string {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return fallback
	}
	if strings.HasPrefix(candidate, "//") || !strings.HasPrefix(candidate, "/") {
		return fallback
	}
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.IsAbs() {
		return fallback
	}
	return candidate
}

// refererPath keeps only the local path of a Referer header.
func refererPath(referer string) string {
	parsed, err := url.Parse(strings.TrimSpace(referer))
	if err != nil || parsed.Path == "" {
		return "/"
	}
	target := parsed.Path
	if parsed.RawQuery != "" {
		target += "?" + parsed.RawQuery
	}
	return sanitizeRedirectPath(target, "/")
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	value, err := parsePositiveID(c.Params(name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a positive id", services.ErrValidation, name)
	}
	return value, nil
}

// parseOptionalIDQuery returns zero when the query parameter is absent.
func parseOptionalIDQuery(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	value, err := parsePositiveID(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a positive id", services.ErrValidation, name)
	}
	return value, nil
}

func parsePositiveID(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, strconv.IntSize)
	if err != nil {
		return 0, err
	}
	if value == 0 {
		return 0, strconv.ErrRange
	}
	return uint(value), nil
}

func queryFlag(c *fiber.Ctx, name string) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(name))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

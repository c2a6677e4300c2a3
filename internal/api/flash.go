package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const flashCookiePurpose = "flash"

// FlashPayload survives exactly one redirect.
type FlashPayload struct {
	Error           string `json:"error,omitempty"`
	ErrorKind       string `json:"error_kind,omitempty"`
	Success         string `json:"success,omitempty"`
	LoginIdentifier string `json:"login_identifier,omitempty"`
}

func (payload FlashPayload) normalized() FlashPayload {
	return FlashPayload{
		Error:           strings.TrimSpace(payload.Error),
		ErrorKind:       strings.TrimSpace(payload.ErrorKind),
		Success:         strings.TrimSpace(payload.Success),
		LoginIdentifier: strings.ToLower(strings.TrimSpace(payload.LoginIdentifier)),
	}
}

func (payload FlashPayload) empty() bool {
	return payload.Error == "" && payload.ErrorKind == "" && payload.Success == "" && payload.LoginIdentifier == ""
}

func (handler *Handler) setFlashCookie(c *fiber.Ctx, payload FlashPayload) {
	payload = payload.normalized()
	if payload.empty() {
		handler.clearFlashCookie(c)
		return
	}

	serialized, err := json.Marshal(payload)
	if err != nil {
		return
	}
	sealed, err := handler.cookieCodec.seal(flashCookiePurpose, serialized)
	if err != nil {
		return
	}

	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    sealed,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().Add(5 * time.Minute),
	})
}

func (handler *Handler) popFlashCookie(c *fiber.Ctx) FlashPayload {
	raw := strings.TrimSpace(c.Cookies(flashCookieName))
	if raw == "" {
		return FlashPayload{}
	}
	handler.clearFlashCookie(c)

	decoded, err := handler.cookieCodec.open(flashCookiePurpose, raw)
	if err != nil {
		return FlashPayload{}
	}
	payload := FlashPayload{}
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return FlashPayload{}
	}
	return payload.normalized()
}

func (handler *Handler) clearFlashCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}

package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/clubstride/hourtrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

var (
	errAuthenticationRequired = fmt.Errorf("%w: sign in required", services.ErrUnauthorized)
	errPasswordChangeRequired = fmt.Errorf("%w: password change required", services.ErrUnauthorized)
	errRoleForbidden          = fmt.Errorf("%w: your role cannot use this endpoint", services.ErrUnauthorized)
	errInvalidInput           = fmt.Errorf("%w: invalid input", services.ErrValidation)
)

// errorStatus maps an error kind to its HTTP status. Failing to establish a session is a
// 401; every other authorization failure is a 403.
func errorStatus(err error) int {
	if isAuthenticationFailure(err) || errors.Is(err, services.ErrInvalidCredentials) {
		return fiber.StatusUnauthorized
	}
	switch services.KindOf(err) {
	case services.KindDuplicateIdentity:
		return fiber.StatusConflict
	case services.KindUnauthorized:
		return fiber.StatusForbidden
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

func isAuthenticationFailure(err error) bool {
	return errors.Is(err, errAuthenticationRequired) ||
		errors.Is(err, services.ErrSessionExpired) ||
		errors.Is(err, errMissingSessionCookie)
}

// errorMessageKey names the translated headline for err. The action hint lives at the same
// key with an ".action" suffix.
func errorMessageKey(err error) string {
	if isAuthenticationFailure(err) {
		return "error.unauthenticated"
	}
	return "error." + string(services.KindOf(err))
}

// respondError writes the JSON error body. Internal failures are logged and never expose
// their cause.
func (handler *Handler) respondError(c *fiber.Ctx, err error) error {
	messages := handler.messagesFor(c)
	key := errorMessageKey(err)
	kind := services.KindOf(err)

	payload := fiber.Map{
		"error":   strings.TrimPrefix(key, "error."),
		"message": translateMessage(messages, key),
		"action":  translateMessage(messages, key+".action"),
	}
	if kind == services.KindInternal {
		handler.logRequestFailure(c, err)
	} else {
		payload["reason"] = services.ErrorReason(err)
	}
	return c.Status(errorStatus(err)).JSON(payload)
}

// respondFormError sends browser form posts back to redirectPath with the error flashed;
// every other client gets the JSON error.
func (handler *Handler) respondFormError(c *fiber.Ctx, err error, redirectPath string, flash FlashPayload) error {
	if !isFormSubmission(c) {
		return handler.respondError(c, err)
	}

	flash.ErrorKind = strings.TrimPrefix(errorMessageKey(err), "error.")
	flash.Error = ""
	if services.KindOf(err) == services.KindInternal {
		handler.logRequestFailure(c, err)
	} else {
		flash.Error = services.ErrorReason(err)
	}
	handler.setFlashCookie(c, flash)
	return c.Redirect(redirectPath, fiber.StatusSeeOther)
}

// respondFormSuccess redirects form posts with an optional flash and answers JSON otherwise.
func (handler *Handler) respondFormSuccess(c *fiber.Ctx, redirectPath string, flash FlashPayload, status int, payload any) error {
	if isFormSubmission(c) {
		handler.setFlashCookie(c, flash)
		return c.Redirect(redirectPath, fiber.StatusSeeOther)
	}
	return c.Status(status).JSON(payload)
}

func (handler *Handler) logRequestFailure(c *fiber.Ctx, err error) {
	attributes := []any{"method", c.Method(), "path", c.Path(), "error", err}
	if user, ok := currentUser(c); ok {
		attributes = append(attributes, "user_id", user.ID)
	}
	handler.logger.Error("request failed", attributes...)
}

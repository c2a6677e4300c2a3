package api

import (
	"bytes"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) render(c *fiber.Ctx, name string, data fiber.Map) error {
	tmpl, ok := handler.templates[name]
	if !ok {
		return c.Status(fiber.StatusInternalServerError).SendString("template not found")
	}
	payload := handler.withTemplateDefaults(c, data)
	var output bytes.Buffer
	if err := tmpl.ExecuteTemplate(&output, "base", payload); err != nil {
		handler.logger.Error("render template", "template", name, "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("failed to render template")
	}
	c.Type("html", "utf-8")
	return c.Send(output.Bytes())
}

func (handler *Handler) withTemplateDefaults(c *fiber.Ctx, data fiber.Map) fiber.Map {
	payload := fiber.Map{
		"Lang":            handler.languageFor(c),
		"Messages":        handler.messagesFor(c),
		"Languages":       handler.i18n.SupportedLanguages(),
		"CurrentPath":     c.OriginalURL(),
		"CSRFToken":       csrfToken(c),
		"FlashSuccess":    "",
		"FlashError":      "",
		"FlashErrorKind":  "",
		"ErrorTarget":     "",
		"LoginIdentifier": "",
		"MustChange":      false,
	}
	if user, ok := currentUser(c); ok {
		payload["CurrentUser"] = user
	}
	for key, value := range data {
		payload[key] = value
	}
	return payload
}

// pageNotices pops the flash cookie and resolves what the page should announce. Query
// parameters are honoured for links that cannot carry a cookie.
func (handler *Handler) pageNotices(c *fiber.Ctx, messages map[string]string) (fiber.Map, FlashPayload) {
	flash := handler.popFlashCookie(c)

	status := handler.notices.ResolveStatus(flash.Success, c.Query("status"))
	if status != "" && !strings.HasPrefix(status, "status.") {
		status = "status." + status
	}
	if translateMessage(messages, status) == status {
		status = ""
	}

	errorSource := handler.notices.ResolveErrorSource(flash.Error, c.Query("error"))
	errorKind := flash.ErrorKind
	if errorKind == "" && errorSource != "" {
		errorKind = "validation"
	}

	return fiber.Map{
		"FlashSuccess":   status,
		"FlashError":     errorSource,
		"FlashErrorKind": errorKind,
		"ErrorTarget":    string(handler.notices.ClassifyErrorSource(errorSource)),
	}, flash
}

func mergeMaps(base fiber.Map, extra fiber.Map) fiber.Map {
	for key, value := range extra {
		base[key] = value
	}
	return base
}

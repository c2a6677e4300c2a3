package api

import (
	"fmt"

	"github.com/clubstride/hourtrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) UserReport(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	report, err := handler.reports.UserReport(currentCaller(c), userID, c.Query("from"), c.Query("to"))
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(report)
}

func (handler *Handler) TeamReport(c *fiber.Ctx) error {
	reports, err := handler.reports.TeamReport(currentCaller(c), c.Query("from"), c.Query("to"))
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"reports": reports})
}

// ExportCSV streams one table as a CSV attachment. Without user_id the caller's own
// rows are exported; admins and lead interns pick a user to export theirs.
func (handler *Handler) ExportCSV(c *fiber.Ctx) error {
	kind, ok := services.ParseExportKind(c.Params("kind"))
	if !ok {
		return handler.respondError(c, fmt.Errorf("%w: unknown export %q", services.ErrValidation, c.Params("kind")))
	}
	userID, err := parseOptionalIDQuery(c, "user_id")
	if err != nil {
		return handler.respondError(c, err)
	}

	caller := currentCaller(c)
	table, err := handler.exports.Build(caller, services.ExportRequest{
		Kind:   kind,
		UserID: userID,
		From:   c.Query("from"),
		To:     c.Query("to"),
	})
	if err != nil {
		return handler.respondError(c, err)
	}
	payload, err := services.EncodeCSV(table)
	if err != nil {
		return handler.respondError(c, fmt.Errorf("encode %s export: %w", kind, err))
	}
	handler.logger.Info("export generated", "kind", kind, "user_id", caller.UserID, "rows", len(table.Rows))

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", services.ExportFilename(kind, handler.now().In(handler.location))))
	return c.Send(payload)
}

package api

import (
	"strings"

	"github.com/clubstride/hourtrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) ListHours(c *fiber.Ctx) error {
	userID, err := parseOptionalIDQuery(c, "user_id")
	if err != nil {
		return handler.respondError(c, err)
	}

	entries, err := handler.hours.List(currentCaller(c), services.HoursFilter{
		UserID:  userID,
		From:    c.Query("from"),
		To:      c.Query("to"),
		Pending: queryFlag(c, "pending"),
	})
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries})
}

func (handler *Handler) SubmitHours(c *fiber.Ctx) error {
	input := services.HourInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondError(c, errInvalidInput)
	}

	entry, err := handler.hours.Submit(currentCaller(c), input)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"entry": entry})
}

func (handler *Handler) ReviewHours(c *fiber.Ctx) error {
	entryID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	input := reviewDecisionInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondError(c, errInvalidInput)
	}
	decision, ok := services.ParseReviewDecision(input.Decision)
	if !ok {
		return handler.respondError(c, services.ErrHoursDecisionInvalid)
	}

	entry, err := handler.hours.Review(currentCaller(c), entryID, decision)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"entry": entry})
}

func (handler *Handler) ListDeliverables(c *fiber.Ctx) error {
	userID, err := parseOptionalIDQuery(c, "user_id")
	if err != nil {
		return handler.respondError(c, err)
	}

	deliverables, err := handler.deliverables.List(currentCaller(c), services.DeliverableFilter{
		UserID: userID,
		Status: c.Query("status"),
	})
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"deliverables": deliverables})
}

func (handler *Handler) SubmitDeliverable(c *fiber.Ctx) error {
	input := services.DeliverableInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondError(c, errInvalidInput)
	}

	deliverable, err := handler.deliverables.Submit(currentCaller(c), input)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"deliverable": deliverable})
}

func (handler *Handler) GetDeliverable(c *fiber.Ctx) error {
	deliverableID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	deliverable, err := handler.deliverables.Get(currentCaller(c), deliverableID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"deliverable": deliverable})
}

func (handler *Handler) ReviewDeliverable(c *fiber.Ctx) error {
	deliverableID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	input := reviewDecisionInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondError(c, errInvalidInput)
	}
	decision, ok := services.ParseReviewDecision(input.Decision)
	if !ok {
		return handler.respondError(c, services.ErrDeliverableDecisionInvalid)
	}

	deliverable, err := handler.deliverables.Review(currentCaller(c), deliverableID, decision, input.Comment)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"deliverable": deliverable})
}

// ResubmitDeliverable accepts an empty body to resend the stored content unchanged.
func (handler *Handler) ResubmitDeliverable(c *fiber.Ctx) error {
	deliverableID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}

	var input *services.DeliverableInput
	if len(strings.TrimSpace(string(c.Body()))) > 0 {
		input = &services.DeliverableInput{}
		if err := c.BodyParser(input); err != nil {
			return handler.respondError(c, errInvalidInput)
		}
	}

	deliverable, err := handler.deliverables.Resubmit(currentCaller(c), deliverableID, input)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"deliverable": deliverable})
}

func (handler *Handler) DeliverableHistory(c *fiber.Ctx) error {
	deliverableID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	history, err := handler.deliverables.History(currentCaller(c), deliverableID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"history": history})
}

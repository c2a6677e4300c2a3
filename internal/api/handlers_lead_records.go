package api

import (
	"strings"

	"github.com/clubstride/hourtrack/internal/models"
	"github.com/clubstride/hourtrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

func parseLeadRecordQuery(c *fiber.Ctx) (models.LeadRecordQuery, error) {
	leadInternID, err := parseOptionalIDQuery(c, "lead_intern_id")
	if err != nil {
		return models.LeadRecordQuery{}, err
	}
	coreInternID, err := parseOptionalIDQuery(c, "core_intern_id")
	if err != nil {
		return models.LeadRecordQuery{}, err
	}

	query := models.LeadRecordQuery{LeadInternID: leadInternID, CoreInternID: coreInternID}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := services.ParseSupportPlanStatus(raw)
		if err != nil {
			return models.LeadRecordQuery{}, err
		}
		query.PlanStatus = status
	}
	return query, nil
}

func (handler *Handler) ListReviews(c *fiber.Ctx) error {
	query, err := parseLeadRecordQuery(c)
	if err != nil {
		return handler.respondError(c, err)
	}
	reviews, err := handler.leads.ListReviews(currentCaller(c), query)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"reviews": reviews})
}

func (handler *Handler) CreateReview(c *fiber.Ctx) error {
	input := services.CoreReviewInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondError(c, errInvalidInput)
	}
	review, err := handler.leads.CreateReview(currentCaller(c), input)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"review": review})
}

func (handler *Handler) UpdateReview(c *fiber.Ctx) error {
	reviewID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	input := services.CoreReviewInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondError(c, errInvalidInput)
	}
	review, err := handler.leads.UpdateReview(currentCaller(c), reviewID, input)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"review": review})
}

func (handler *Handler) ListSupportPlans(c *fiber.Ctx) error {
	query, err := parseLeadRecordQuery(c)
	if err != nil {
		return handler.respondError(c, err)
	}
	plans, err := handler.leads.ListSupportPlans(currentCaller(c), query)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"plans": plans})
}

func (handler *Handler) CreateSupportPlan(c *fiber.Ctx) error {
	input := services.SupportPlanInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondError(c, errInvalidInput)
	}
	plan, err := handler.leads.CreateSupportPlan(currentCaller(c), input)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"plan": plan})
}

func (handler *Handler) UpdateSupportPlan(c *fiber.Ctx) error {
	planID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	input := services.SupportPlanInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondError(c, errInvalidInput)
	}
	plan, err := handler.leads.UpdateSupportPlan(currentCaller(c), planID, input)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"plan": plan})
}

func (handler *Handler) UpdateSupportPlanStatus(c *fiber.Ctx) error {
	planID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	input := planStatusInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondError(c, errInvalidInput)
	}
	plan, err := handler.leads.UpdateSupportPlanStatus(currentCaller(c), planID, input.Status)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"plan": plan})
}

func (handler *Handler) ListWins(c *fiber.Ctx) error {
	query, err := parseLeadRecordQuery(c)
	if err != nil {
		return handler.respondError(c, err)
	}
	wins, err := handler.leads.ListWins(currentCaller(c), query)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"wins": wins})
}

func (handler *Handler) AddWin(c *fiber.Ctx) error {
	input := services.WinInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondError(c, errInvalidInput)
	}
	win, err := handler.leads.AddWin(currentCaller(c), input)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"win": win})
}

func (handler *Handler) MarkWinCelebrated(c *fiber.Ctx) error {
	winID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	input := celebratedInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.respondError(c, errInvalidInput)
	}
	win, err := handler.leads.MarkWinCelebrated(currentCaller(c), winID, input.Celebrated)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"win": win})
}

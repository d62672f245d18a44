package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-screening/internal/apperrors"
	"alfredoptarigan/cv-screening/internal/models"
	"alfredoptarigan/cv-screening/internal/services"
)

type ScreeningHandler struct {
	screening *services.ScreeningService
	status    *services.StatusService
}

func NewScreeningHandler(screening *services.ScreeningService, status *services.StatusService) *ScreeningHandler {
	return &ScreeningHandler{
		screening: screening,
		status:    status,
	}
}

// HandleRequestScreening handles POST /jobs/:jobId/screenings
func (h *ScreeningHandler) HandleRequestScreening(c *fiber.Ctx) error {
	jobID, err := paramID(c, "jobId")
	if err != nil {
		return err
	}

	var req models.ScreeningRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request payload")
	}

	results, err := h.screening.RequestScreening(c.UserContext(), CallerFrom(c), jobID, req.ApplicantIDs)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(models.ScreeningResponse{
		Message: "screening started",
		Results: results,
	})
}

// HandleGetScreening handles GET /screenings/:id
func (h *ScreeningHandler) HandleGetScreening(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.status.Screening(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

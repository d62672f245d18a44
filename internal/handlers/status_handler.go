package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-screening/internal/services"
)

type StatusHandler struct {
	status *services.StatusService
}

func NewStatusHandler(status *services.StatusService) *StatusHandler {
	return &StatusHandler{status: status}
}

func (h *StatusHandler) HandleDocumentStatus(c *fiber.Ctx) error {
	applicantID, err := paramID(c, "applicantId")
	if err != nil {
		return err
	}

	view, err := h.status.DocumentStatus(c.UserContext(), applicantID)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *StatusHandler) HandleScreeningStatus(c *fiber.Ctx) error {
	applicantID, err := paramID(c, "applicantId")
	if err != nil {
		return err
	}

	view, err := h.status.ScreeningStatus(c.UserContext(), applicantID)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *StatusHandler) HandleApplicantStatus(c *fiber.Ctx) error {
	applicantID, err := paramID(c, "applicantId")
	if err != nil {
		return err
	}

	status, err := h.status.ApplicantStatus(c.UserContext(), applicantID)
	if err != nil {
		return err
	}
	return c.JSON(status)
}

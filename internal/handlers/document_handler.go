package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-screening/internal/models"
	"alfredoptarigan/cv-screening/internal/services"
)

type DocumentHandler struct {
	status     *services.StatusService
	extraction *services.ExtractionService
}

func NewDocumentHandler(status *services.StatusService, extraction *services.ExtractionService) *DocumentHandler {
	return &DocumentHandler{
		status:     status,
		extraction: extraction,
	}
}

// HandleGetDocument handles GET /documents/:id
func (h *DocumentHandler) HandleGetDocument(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.status.Document(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(doc)
}

// HandleReextract handles POST /documents/:id/reextract
func (h *DocumentHandler) HandleReextract(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.extraction.Reextract(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(models.ReextractResponse{
		ID:     doc.ID,
		Status: string(doc.Status),
	})
}

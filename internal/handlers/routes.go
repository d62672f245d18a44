package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Upload    *UploadHandler
	Document  *DocumentHandler
	Screening *ScreeningHandler
	Status    *StatusHandler
}

// Register mounts the API under router, normally the /api/v1 group.
func Register(router fiber.Router, h Handlers) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	router.Post("/applicants/:applicantId/documents", h.Upload.HandleUpload)
	router.Get("/applicants/:applicantId/document-status", h.Status.HandleDocumentStatus)
	router.Get("/applicants/:applicantId/screening-status", h.Status.HandleScreeningStatus)
	router.Get("/applicants/:applicantId/status", h.Status.HandleApplicantStatus)

	router.Get("/documents/:id", h.Document.HandleGetDocument)
	router.Post("/documents/:id/reextract", h.Document.HandleReextract)

	router.Post("/jobs/:jobId/screenings", CallerMiddleware(), h.Screening.HandleRequestScreening)
	router.Get("/screenings/:id", h.Screening.HandleGetScreening)
}

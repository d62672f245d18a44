package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-screening/internal/apperrors"
	"alfredoptarigan/cv-screening/internal/services"
)

type UploadHandler struct {
	ingestion   *services.IngestionService
	maxFileSize int64
}

func NewUploadHandler(ingestion *services.IngestionService, maxFileSize int64) *UploadHandler {
	return &UploadHandler{
		ingestion:   ingestion,
		maxFileSize: maxFileSize,
	}
}

// HandleUpload handles POST /applicants/:applicantId/documents
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	applicantID, err := paramID(c, "applicantId")
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return apperrors.ValidationField("file", "multipart field 'file' is required")
	}

	contentType := fh.Header.Get(fiber.HeaderContentType)

	// reject before reading the body into memory
	if _, err := services.ValidateUpload(fh.Filename, contentType, fh.Size, h.maxFileSize); err != nil {
		return err
	}

	file, err := fh.Open()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to open uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to read uploaded file")
	}

	doc, err := h.ingestion.Upload(c.UserContext(), applicantID, fh.Filename, contentType, data)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

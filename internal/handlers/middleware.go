package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/cv-screening/internal/apperrors"
	"alfredoptarigan/cv-screening/internal/models"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"

	localRequestID = "request_id"
	localCaller    = "caller"
)

// RequestIDMiddleware keeps an incoming X-Request-ID or assigns a new one.
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(localRequestID, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(localRequestID).(string)
	return id
}

// CallerMiddleware reads the identity forwarded by the gateway. A missing
// identity is left empty; services reject it where one is required.
func CallerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localCaller, models.Caller{
			UserID: c.Get(HeaderUserID),
			Role:   c.Get(HeaderUserRole),
		})
		return c.Next()
	}
}

func CallerFrom(c *fiber.Ctx) models.Caller {
	caller, _ := c.Locals(localCaller).(models.Caller)
	return caller
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ValidationField(name, "invalid "+name+" format")
	}
	return uint(id), nil
}

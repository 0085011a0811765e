package handler

import (
	"errors"

	"go-almoxarifado/internal/invariant"
	"go-almoxarifado/internal/repository"
	"go-almoxarifado/internal/snapshot"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Helper to get user info from JWT context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return "system"
	}
	return userID.(string)
}

func getUserName(c *fiber.Ctx) string {
	userName := c.Locals("user_name")
	if userName == nil {
		return "Unknown"
	}
	return userName.(string)
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// fail maps domain errors onto HTTP statuses: consistency violations and
// state conflicts come back 409, bad payloads 400, storage trouble 503.
func fail(c *fiber.Ctx, err error) error {
	var importErr *snapshot.ImportError
	if errors.As(err, &importErr) {
		return c.Status(409).JSON(fiber.Map{
			"error": importErr.Error(),
			"phase": importErr.Phase,
			"table": importErr.Table,
		})
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, invariant.ErrNegativeStock),
		errors.Is(err, invariant.ErrInsufficientAvailable),
		errors.Is(err, invariant.ErrItemInUse),
		errors.Is(err, invariant.ErrInvalidState),
		errors.Is(err, repository.ErrConcurrentModification):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, invariant.ErrInvalidInput),
		errors.Is(err, invariant.ErrUnknownCategory):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrStore):
		return c.Status(503).JSON(fiber.Map{"error": "Storage unavailable"})
	}
	return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
}

func redShelfQuery(c *fiber.Ctx) bool {
	return c.Query("pool") == "red_shelf" || c.QueryBool("red_shelf")
}

package handler

import (
	"go-almoxarifado/internal/service"
	"go-almoxarifado/internal/snapshot"

	"github.com/gofiber/fiber/v2"
)

type SnapshotHandler struct {
	service service.SnapshotService
}

func NewSnapshotHandler(s service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{service: s}
}

// Export streams the full dataset in the external camelCase form.
func (h *SnapshotHandler) Export(c *fiber.Ctx) error {
	snap, err := h.service.Export(getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	data, err := snapshot.MarshalWire(snap)
	if err != nil {
		return fail(c, err)
	}
	c.Set("Content-Type", "application/json")
	c.Set("Content-Disposition", `attachment; filename="almoxarifado-backup.json"`)
	return c.Send(data)
}

// Import replaces the entire dataset with the posted snapshot. Destructive;
// admin only.
func (h *SnapshotHandler) Import(c *fiber.Ctx) error {
	snap, err := snapshot.UnmarshalWire(c.Body())
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid snapshot payload"})
	}
	if err := h.service.Import(snap, getUserName(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Snapshot imported"})
}

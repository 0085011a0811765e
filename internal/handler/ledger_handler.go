package handler

import (
	"go-almoxarifado/internal/service"

	"github.com/gofiber/fiber/v2"
)

type LedgerHandler struct {
	service service.LedgerService
}

func NewLedgerHandler(s service.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: s}
}

func (h *LedgerHandler) GetMovements(c *fiber.Ctx) error {
	movements, err := h.service.GetAllMovements()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(movements)
}

func (h *LedgerHandler) GetItemHistory(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}
	movements, err := h.service.History(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(movements)
}

func (h *LedgerHandler) RecordMovement(c *fiber.Ctx) error {
	var req service.MovementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	movement, item, err := h.service.RecordMovement(&req, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{
		"message": "Movement recorded",
		"data":    fiber.Map{"movement": movement, "item": item},
	})
}

func (h *LedgerHandler) AdjustQuantity(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}
	var body struct {
		NewQuantity int    `json:"new_quantity"`
		Notes       string `json:"notes"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	movement, item, err := h.service.AdjustQuantity(id, body.NewQuantity, body.Notes, redShelfQuery(c), getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Quantity adjusted",
		"data":    fiber.Map{"movement": movement, "item": item},
	})
}

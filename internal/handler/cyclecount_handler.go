package handler

import (
	"go-almoxarifado/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CycleCountHandler struct {
	service service.CycleCountService
}

func NewCycleCountHandler(s service.CycleCountService) *CycleCountHandler {
	return &CycleCountHandler{service: s}
}

func (h *CycleCountHandler) GetSessions(c *fiber.Ctx) error {
	sessions, err := h.service.GetAll()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sessions)
}

func (h *CycleCountHandler) GetSession(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	session, err := h.service.GetByID(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(session)
}

func (h *CycleCountHandler) Start(c *fiber.Ctx) error {
	var body struct {
		Reason string `json:"reason"`
		Limit  int    `json:"limit"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	session, err := h.service.Start(body.Reason, body.Limit, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Cycle count started", "data": session})
}

func (h *CycleCountHandler) SubmitCounts(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	var counts []service.SubmitCountRequest
	if err := c.BodyParser(&counts); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	session, err := h.service.SubmitCounts(id, counts, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Counts submitted", "data": session})
}

func (h *CycleCountHandler) Recount(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	lineID, err := parseUUID(c.Params("lineId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid line ID"})
	}
	session, err := h.service.Recount(id, lineID, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Line re-baselined", "data": session})
}

func (h *CycleCountHandler) Commit(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	session, movements, err := h.service.Commit(id, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Cycle count committed",
		"data":    fiber.Map{"session": session, "adjustments": movements},
	})
}

func (h *CycleCountHandler) Cancel(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	if err := h.service.Cancel(id, getUserName(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cycle count cancelled"})
}

package handler

import (
	"go-almoxarifado/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReservationHandler struct {
	service service.ReservationService
	kits    service.KitService
}

func NewReservationHandler(s service.ReservationService, kits service.KitService) *ReservationHandler {
	return &ReservationHandler{service: s, kits: kits}
}

func (h *ReservationHandler) GetReservations(c *fiber.Ctx) error {
	reservations, err := h.service.GetAll()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(reservations)
}

func (h *ReservationHandler) ReserveItem(c *fiber.Ctx) error {
	var req service.ReserveItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	reservation, err := h.service.ReserveItem(&req, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Reservation created", "data": reservation})
}

func (h *ReservationHandler) ReserveKit(c *fiber.Ctx) error {
	var req service.ReserveKitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	parent, components, err := h.service.ReserveKit(&req, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{
		"message": "Kit reserved",
		"data":    fiber.Map{"reservation": parent, "components": components},
	})
}

func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid reservation ID"})
	}
	if err := h.service.Release(id, getUserName(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Reservation released"})
}

func (h *ReservationHandler) Fulfill(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid reservation ID"})
	}
	movement, err := h.service.Fulfill(id, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Reservation fulfilled", "data": movement})
}

func (h *ReservationHandler) GetItemAvailability(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}
	available, err := h.service.AvailableQuantity(id, redShelfQuery(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"item_id": id, "available": available})
}

func (h *ReservationHandler) GetKits(c *fiber.Ctx) error {
	kits, err := h.kits.GetAll()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(kits)
}

func (h *ReservationHandler) GetKit(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid kit ID"})
	}
	kit, err := h.kits.GetByID(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(kit)
}

func (h *ReservationHandler) GetKitAvailability(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid kit ID"})
	}
	available, err := h.service.KitAvailability(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"kit_id": id, "available": available})
}

func (h *ReservationHandler) CreateKit(c *fiber.Ctx) error {
	var req service.KitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	kit, err := h.kits.Create(&req, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Kit created", "data": kit})
}

func (h *ReservationHandler) UpdateKit(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid kit ID"})
	}
	var req service.KitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	kit, err := h.kits.Update(id, &req, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Kit updated", "data": kit})
}

func (h *ReservationHandler) DeleteKit(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid kit ID"})
	}
	if err := h.kits.Delete(id, getUserName(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Kit deleted"})
}

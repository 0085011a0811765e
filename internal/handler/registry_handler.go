package handler

import (
	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RegistryHandler struct {
	service service.RegistryService
}

func NewRegistryHandler(s service.RegistryService) *RegistryHandler {
	return &RegistryHandler{service: s}
}

func (h *RegistryHandler) GetSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.service.GetSuppliers()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(suppliers)
}

func (h *RegistryHandler) CreateSupplier(c *fiber.Ctx) error {
	var supplier model.Supplier
	if err := c.BodyParser(&supplier); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	created, err := h.service.CreateSupplier(&supplier, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Supplier created", "data": created})
}

func (h *RegistryHandler) UpdateSupplier(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid supplier ID"})
	}
	var supplier model.Supplier
	if err := c.BodyParser(&supplier); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	updated, err := h.service.UpdateSupplier(id, &supplier, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier updated", "data": updated})
}

func (h *RegistryHandler) DeleteSupplier(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid supplier ID"})
	}
	if err := h.service.DeleteSupplier(id, getUserName(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier deleted"})
}

func (h *RegistryHandler) GetTechnicians(c *fiber.Ctx) error {
	technicians, err := h.service.GetTechnicians()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(technicians)
}

func (h *RegistryHandler) CreateTechnician(c *fiber.Ctx) error {
	var technician model.Technician
	if err := c.BodyParser(&technician); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	created, err := h.service.CreateTechnician(&technician, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Technician created", "data": created})
}

func (h *RegistryHandler) UpdateTechnician(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid technician ID"})
	}
	var technician model.Technician
	if err := c.BodyParser(&technician); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	updated, err := h.service.UpdateTechnician(id, &technician, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Technician updated", "data": updated})
}

func (h *RegistryHandler) DeleteTechnician(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid technician ID"})
	}
	if err := h.service.DeleteTechnician(id, getUserName(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Technician deleted"})
}

func (h *RegistryHandler) GetAuditLogs(c *fiber.Ctx) error {
	logs, err := h.service.GetAuditLogs()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(logs)
}

package handler

import (
	"go-almoxarifado/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type WorkflowHandler struct {
	service service.WorkflowService
}

func NewWorkflowHandler(s service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{service: s}
}

func (h *WorkflowHandler) GetPurchaseOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetPurchaseOrders()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(orders)
}

func (h *WorkflowHandler) GetPurchaseOrder(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}
	order, err := h.service.GetPurchaseOrderByID(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}

func (h *WorkflowHandler) CreatePurchaseOrder(c *fiber.Ctx) error {
	var req service.PurchaseOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	order, err := h.service.CreatePurchaseOrder(&req, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Purchase order created", "data": order})
}

func (h *WorkflowHandler) SubmitPurchaseOrder(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}
	order, err := h.service.SubmitPurchaseOrder(id, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Purchase order submitted", "data": order})
}

func (h *WorkflowHandler) ReceivePurchaseOrder(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}
	order, movements, err := h.service.ReceivePurchaseOrder(id, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Purchase order received",
		"data":    fiber.Map{"order": order, "movements": movements},
	})
}

func (h *WorkflowHandler) CancelPurchaseOrder(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}
	order, err := h.service.CancelPurchaseOrder(id, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Purchase order cancelled", "data": order})
}

func (h *WorkflowHandler) GetPickingLists(c *fiber.Ctx) error {
	lists, err := h.service.GetPickingLists()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(lists)
}

func (h *WorkflowHandler) GetPickingList(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid picking list ID"})
	}
	list, err := h.service.GetPickingListByID(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}

func (h *WorkflowHandler) CreatePickingList(c *fiber.Ctx) error {
	var req service.PickingListRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	list, err := h.service.CreatePickingList(&req, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Picking list created", "data": list})
}

func (h *WorkflowHandler) StartPickingList(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid picking list ID"})
	}
	list, err := h.service.StartPickingList(id, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Picking list started", "data": list})
}

func (h *WorkflowHandler) CompletePickingList(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid picking list ID"})
	}
	var body struct {
		Picked []struct {
			LineID   uuid.UUID `json:"line_id"`
			Quantity int       `json:"quantity"`
		} `json:"picked"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	picked := make(map[uuid.UUID]int, len(body.Picked))
	for _, p := range body.Picked {
		picked[p.LineID] = p.Quantity
	}
	list, movements, err := h.service.CompletePickingList(id, picked, getUserName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Picking list completed",
		"data":    fiber.Map{"list": list, "movements": movements},
	})
}

package service

import (
	"fmt"
	"time"

	"go-almoxarifado/internal/invariant"
	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/repository"
	"go-almoxarifado/internal/ws"
	"go-almoxarifado/pkg/validator"

	"github.com/google/uuid"
)

// PurchaseOrderRequest creates a draft order.
type PurchaseOrderRequest struct {
	SupplierID uuid.UUID              `json:"supplier_id" validate:"uuid_required"`
	Notes      string                 `json:"notes,omitempty"`
	Lines      []PurchaseOrderLineReq `json:"lines" validate:"required,min=1,dive"`
}

type PurchaseOrderLineReq struct {
	ItemID   uuid.UUID `json:"item_id" validate:"uuid_required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

// PickingListRequest creates an open picking list.
type PickingListRequest struct {
	TechnicianID *uuid.UUID           `json:"technician_id,omitempty"`
	Notes        string               `json:"notes,omitempty"`
	Lines        []PickingListLineReq `json:"lines" validate:"required,min=1,dive"`
}

type PickingListLineReq struct {
	ItemID            uuid.UUID  `json:"item_id" validate:"uuid_required"`
	RequestedQuantity int        `json:"requested_quantity" validate:"required,gt=0"`
	ReservationID     *uuid.UUID `json:"reservation_id,omitempty"`
}

// WorkflowService drives purchase orders and picking lists. Both workflows
// touch stock only at their terminal step, and only through the ledger:
// receiving an order writes inbound movements, completing a picking list
// writes outbound ones.
type WorkflowService interface {
	GetPurchaseOrders() ([]model.PurchaseOrder, error)
	GetPurchaseOrderByID(id uuid.UUID) (*model.PurchaseOrder, error)
	CreatePurchaseOrder(req *PurchaseOrderRequest, actor string) (*model.PurchaseOrder, error)
	SubmitPurchaseOrder(id uuid.UUID, actor string) (*model.PurchaseOrder, error)
	ReceivePurchaseOrder(id uuid.UUID, actor string) (*model.PurchaseOrder, []model.Movement, error)
	CancelPurchaseOrder(id uuid.UUID, actor string) (*model.PurchaseOrder, error)

	GetPickingLists() ([]model.PickingList, error)
	GetPickingListByID(id uuid.UUID) (*model.PickingList, error)
	CreatePickingList(req *PickingListRequest, actor string) (*model.PickingList, error)
	StartPickingList(id uuid.UUID, actor string) (*model.PickingList, error)
	CompletePickingList(id uuid.UUID, picked map[uuid.UUID]int, actor string) (*model.PickingList, []model.Movement, error)
}

type workflowService struct {
	purchaseRepo repository.PurchaseOrderRepository
	pickingRepo  repository.PickingListRepository
	reservations repository.ReservationRepository
	ledger       repository.LedgerStore
	audits       repository.AuditLogRepository
	wsHub        *ws.Hub
	now          func() time.Time
}

func NewWorkflowService(
	purchaseRepo repository.PurchaseOrderRepository,
	pickingRepo repository.PickingListRepository,
	reservations repository.ReservationRepository,
	ledger repository.LedgerStore,
	audits repository.AuditLogRepository,
	hub *ws.Hub,
) WorkflowService {
	return &workflowService{
		purchaseRepo: purchaseRepo,
		pickingRepo:  pickingRepo,
		reservations: reservations,
		ledger:       ledger,
		audits:       audits,
		wsHub:        hub,
		now:          time.Now,
	}
}

func (s *workflowService) GetPurchaseOrders() ([]model.PurchaseOrder, error) {
	return s.purchaseRepo.FindAll()
}

func (s *workflowService) GetPurchaseOrderByID(id uuid.UUID) (*model.PurchaseOrder, error) {
	return s.purchaseRepo.FindByID(id)
}

func (s *workflowService) CreatePurchaseOrder(req *PurchaseOrderRequest, actor string) (*model.PurchaseOrder, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("%w: field '%s' failed on tag '%s'",
			invariant.ErrInvalidInput, first.FailedField, first.Tag)
	}

	po := &model.PurchaseOrder{
		SupplierID: req.SupplierID,
		Status:     model.POStatusDraft,
		Notes:      req.Notes,
	}
	po.EnsureBase()
	po.CreatedBy = actor
	po.UpdatedBy = actor
	po.PONumber = generatePONumber(s.now(), po.ID)
	for _, l := range req.Lines {
		line := model.PurchaseOrderLine{
			PurchaseOrderID: po.ID,
			ItemID:          l.ItemID,
			Quantity:        l.Quantity,
		}
		line.EnsureBase()
		line.CreatedBy = actor
		line.UpdatedBy = actor
		po.Lines = append(po.Lines, line)
	}

	if err := s.purchaseRepo.Create(po); err != nil {
		return nil, err
	}
	s.audits.Append("purchase_order:create",
		fmt.Sprintf("created purchase order %s with %d lines", po.PONumber, len(po.Lines)), actor)
	return po, nil
}

func (s *workflowService) SubmitPurchaseOrder(id uuid.UUID, actor string) (*model.PurchaseOrder, error) {
	po, err := s.purchaseRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if po.Status != model.POStatusDraft {
		return nil, fmt.Errorf("%w: order is %s", invariant.ErrInvalidState, po.Status)
	}
	po.Status = model.POStatusSubmitted
	po.UpdatedBy = actor
	if err := s.purchaseRepo.Update(po); err != nil {
		return nil, err
	}
	s.audits.Append("purchase_order:submit", fmt.Sprintf("submitted purchase order %s", po.PONumber), actor)
	return po, nil
}

// ReceivePurchaseOrder books one inbound movement per line through the
// ledger, then marks the order received. Receiving is full-quantity; a
// partially delivered order stays submitted until the rest arrives.
func (s *workflowService) ReceivePurchaseOrder(id uuid.UUID, actor string) (*model.PurchaseOrder, []model.Movement, error) {
	po, err := s.purchaseRepo.FindByID(id)
	if err != nil {
		return nil, nil, err
	}
	if po.Status != model.POStatusSubmitted {
		return nil, nil, fmt.Errorf("%w: order is %s", invariant.ErrInvalidState, po.Status)
	}

	movements := make([]model.Movement, 0, len(po.Lines))
	for i := range po.Lines {
		line := &po.Lines[i]
		mv, _, err := s.ledger.AddMovement(repository.AddMovementParams{
			ItemID:   line.ItemID,
			Type:     model.MovementIn,
			Quantity: line.Quantity,
			Date:     s.now(),
			Notes:    fmt.Sprintf("receipt of %s", po.PONumber),
			Actor:    actor,
		})
		if err != nil {
			return nil, nil, err
		}
		movements = append(movements, *mv)
		line.ReceivedQuantity = line.Quantity
		line.UpdatedBy = actor
	}

	po.Status = model.POStatusReceived
	po.UpdatedBy = actor
	if err := s.purchaseRepo.Update(po); err != nil {
		return nil, nil, err
	}

	s.audits.Append("purchase_order:receive",
		fmt.Sprintf("received purchase order %s, %d lines", po.PONumber, len(po.Lines)), actor)
	s.wsHub.Publish(ws.Event{
		Type:    "stock_update",
		Action:  "purchase_order_received",
		Payload: map[string]interface{}{"purchase_order_id": po.ID, "po_number": po.PONumber},
		Actor:   actor,
	})
	return po, movements, nil
}

func (s *workflowService) CancelPurchaseOrder(id uuid.UUID, actor string) (*model.PurchaseOrder, error) {
	po, err := s.purchaseRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	switch po.Status {
	case model.POStatusReceived:
		return nil, fmt.Errorf("%w: order already received", invariant.ErrInvalidState)
	case model.POStatusCancelled:
		return po, nil
	}
	po.Status = model.POStatusCancelled
	po.UpdatedBy = actor
	if err := s.purchaseRepo.Update(po); err != nil {
		return nil, err
	}
	s.audits.Append("purchase_order:cancel", fmt.Sprintf("cancelled purchase order %s", po.PONumber), actor)
	return po, nil
}

func (s *workflowService) GetPickingLists() ([]model.PickingList, error) {
	return s.pickingRepo.FindAll()
}

func (s *workflowService) GetPickingListByID(id uuid.UUID) (*model.PickingList, error) {
	return s.pickingRepo.FindByID(id)
}

func (s *workflowService) CreatePickingList(req *PickingListRequest, actor string) (*model.PickingList, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("%w: field '%s' failed on tag '%s'",
			invariant.ErrInvalidInput, first.FailedField, first.Tag)
	}

	list := &model.PickingList{
		TechnicianID: req.TechnicianID,
		Status:       model.PickingOpen,
		Notes:        req.Notes,
	}
	list.EnsureBase()
	list.CreatedBy = actor
	list.UpdatedBy = actor
	for _, l := range req.Lines {
		line := model.PickingListLine{
			PickingListID:     list.ID,
			ItemID:            l.ItemID,
			RequestedQuantity: l.RequestedQuantity,
			ReservationID:     l.ReservationID,
		}
		line.EnsureBase()
		line.CreatedBy = actor
		line.UpdatedBy = actor
		list.Lines = append(list.Lines, line)
	}

	if err := s.pickingRepo.Create(list); err != nil {
		return nil, err
	}
	s.audits.Append("picking_list:create",
		fmt.Sprintf("created picking list %s with %d lines", list.ID, len(list.Lines)), actor)
	return list, nil
}

func (s *workflowService) StartPickingList(id uuid.UUID, actor string) (*model.PickingList, error) {
	list, err := s.pickingRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if list.Status != model.PickingOpen {
		return nil, fmt.Errorf("%w: picking list is %s", invariant.ErrInvalidState, list.Status)
	}
	list.Status = model.PickingInProgress
	list.UpdatedBy = actor
	if err := s.pickingRepo.Update(list); err != nil {
		return nil, err
	}
	s.audits.Append("picking_list:start", fmt.Sprintf("started picking list %s", list.ID), actor)
	return list, nil
}

// CompletePickingList books outbound movements for the picked quantities and
// fulfills any reservation a line is tied to. Lines absent from the picked
// map default to their requested quantity; zero skips the line.
func (s *workflowService) CompletePickingList(id uuid.UUID, picked map[uuid.UUID]int, actor string) (*model.PickingList, []model.Movement, error) {
	list, err := s.pickingRepo.FindByID(id)
	if err != nil {
		return nil, nil, err
	}
	if list.Status != model.PickingInProgress {
		return nil, nil, fmt.Errorf("%w: picking list is %s", invariant.ErrInvalidState, list.Status)
	}

	movements := make([]model.Movement, 0, len(list.Lines))
	for i := range list.Lines {
		line := &list.Lines[i]
		qty, ok := picked[line.ID]
		if !ok {
			qty = line.RequestedQuantity
		}
		if qty < 0 || qty > line.RequestedQuantity {
			return nil, nil, fmt.Errorf("%w: picked quantity out of range for line %s",
				invariant.ErrInvalidInput, line.ID)
		}
		line.PickedQuantity = qty
		line.UpdatedBy = actor
		if qty == 0 {
			continue
		}

		if line.ReservationID != nil {
			// The reservation already holds the stock; fulfilling it books
			// the outbound movement.
			mv, err := s.fulfillReservation(*line.ReservationID, actor)
			if err != nil {
				return nil, nil, err
			}
			movements = append(movements, *mv)
			continue
		}
		mv, _, err := s.ledger.AddMovement(repository.AddMovementParams{
			ItemID:       line.ItemID,
			Type:         model.MovementOut,
			Quantity:     qty,
			Date:         s.now(),
			TechnicianID: list.TechnicianID,
			Notes:        fmt.Sprintf("picking list %s", list.ID),
			Actor:        actor,
		})
		if err != nil {
			return nil, nil, err
		}
		movements = append(movements, *mv)
	}

	list.Status = model.PickingCompleted
	list.UpdatedBy = actor
	if err := s.pickingRepo.Update(list); err != nil {
		return nil, nil, err
	}

	s.audits.Append("picking_list:complete",
		fmt.Sprintf("completed picking list %s", list.ID), actor)
	s.wsHub.Publish(ws.Event{
		Type:    "stock_update",
		Action:  "picking_list_completed",
		Payload: map[string]interface{}{"picking_list_id": list.ID},
		Actor:   actor,
	})
	return list, movements, nil
}

func (s *workflowService) fulfillReservation(id uuid.UUID, actor string) (*model.Movement, error) {
	res, err := s.reservations.FindByID(id)
	if err != nil {
		return nil, err
	}
	if res.Status != model.ReservationActive {
		return nil, fmt.Errorf("%w: reservation is %s", invariant.ErrInvalidState, res.Status)
	}
	if res.ItemID == nil {
		return nil, fmt.Errorf("%w: picking lines may only carry item reservations", invariant.ErrInvalidInput)
	}
	mv, _, err := s.ledger.AddMovement(repository.AddMovementParams{
		ItemID:       *res.ItemID,
		RedShelf:     res.IsRedShelf,
		Type:         model.MovementOut,
		Quantity:     res.Quantity,
		Date:         s.now(),
		TechnicianID: res.TechnicianID,
		Notes:        fmt.Sprintf("fulfillment of reservation %s", res.ID),
		Actor:        actor,
	})
	if err != nil {
		return nil, err
	}
	if err := s.reservations.UpdateStatus(id, model.ReservationFulfilled, actor); err != nil {
		return nil, err
	}
	return mv, nil
}

// generatePONumber derives a human-readable order number from the creation
// date plus the id's first segment, e.g. PO-20260831-9f8a3c1d.
func generatePONumber(t time.Time, id uuid.UUID) string {
	return fmt.Sprintf("PO-%s-%s", t.Format("20060102"), id.String()[:8])
}

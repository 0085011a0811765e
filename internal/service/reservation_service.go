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

// ReserveItemRequest holds one direct item reservation.
type ReserveItemRequest struct {
	ItemID       uuid.UUID  `json:"item_id" validate:"uuid_required"`
	IsRedShelf   bool       `json:"is_red_shelf"`
	Quantity     int        `json:"quantity" validate:"required,gt=0"`
	TechnicianID *uuid.UUID `json:"technician_id,omitempty"`
}

// ReserveKitRequest reserves whole kits; the service explodes the kit into
// one component reservation per line under a shared parent row.
type ReserveKitRequest struct {
	KitID        uuid.UUID  `json:"kit_id" validate:"uuid_required"`
	Quantity     int        `json:"quantity" validate:"required,gt=0"`
	TechnicianID *uuid.UUID `json:"technician_id,omitempty"`
}

type ReservationService interface {
	GetAll() ([]model.Reservation, error)
	ReserveItem(req *ReserveItemRequest, actor string) (*model.Reservation, error)
	ReserveKit(req *ReserveKitRequest, actor string) (*model.Reservation, []model.Reservation, error)
	Release(id uuid.UUID, actor string) error
	Fulfill(id uuid.UUID, actor string) (*model.Movement, error)
	AvailableQuantity(itemID uuid.UUID, redShelf bool) (int, error)
	KitAvailability(kitID uuid.UUID) (int, error)
}

type reservationService struct {
	reservations repository.ReservationRepository
	items        repository.ItemRepository
	kits         repository.KitRepository
	ledger       repository.LedgerStore
	audits       repository.AuditLogRepository
	wsHub        *ws.Hub
}

func NewReservationService(
	reservations repository.ReservationRepository,
	items repository.ItemRepository,
	kits repository.KitRepository,
	ledger repository.LedgerStore,
	audits repository.AuditLogRepository,
	hub *ws.Hub,
) ReservationService {
	return &reservationService{
		reservations: reservations,
		items:        items,
		kits:         kits,
		ledger:       ledger,
		audits:       audits,
		wsHub:        hub,
	}
}

func (s *reservationService) GetAll() ([]model.Reservation, error) {
	return s.reservations.FindAll()
}

// AvailableQuantity is on-hand minus every active allocation against the
// item, whether reserved directly or through a kit component row.
func (s *reservationService) AvailableQuantity(itemID uuid.UUID, redShelf bool) (int, error) {
	item, err := s.items.FindByID(itemID, redShelf)
	if err != nil {
		return 0, err
	}
	active, err := s.reservations.ActiveByItem(itemID, redShelf)
	if err != nil {
		return 0, err
	}
	reserved := 0
	for _, r := range active {
		reserved += r.Quantity
	}
	return item.Quantity - reserved, nil
}

func (s *reservationService) KitAvailability(kitID uuid.UUID) (int, error) {
	kit, err := s.kits.FindByID(kitID)
	if err != nil {
		return 0, err
	}
	available, err := s.availableByItem(kit.Components)
	if err != nil {
		return 0, err
	}
	return invariant.KitAvailability(kit.Components, available), nil
}

func (s *reservationService) availableByItem(components []model.KitComponent) (map[uuid.UUID]int, error) {
	reserved, err := s.reservations.ActiveQuantities(false)
	if err != nil {
		return nil, err
	}
	available := make(map[uuid.UUID]int, len(components))
	for _, c := range components {
		if _, done := available[c.ItemID]; done {
			continue
		}
		item, err := s.items.FindByID(c.ItemID, false)
		if err != nil {
			return nil, err
		}
		available[c.ItemID] = item.Quantity - reserved[c.ItemID]
	}
	return available, nil
}

func (s *reservationService) ReserveItem(req *ReserveItemRequest, actor string) (*model.Reservation, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("%w: field '%s' failed on tag '%s'",
			invariant.ErrInvalidInput, first.FailedField, first.Tag)
	}

	itemID := req.ItemID
	row := model.Reservation{
		ItemID:       &itemID,
		IsRedShelf:   req.IsRedShelf,
		Quantity:     req.Quantity,
		TechnicianID: req.TechnicianID,
		Status:       model.ReservationActive,
	}
	row.EnsureBase()
	row.CreatedBy = actor
	row.UpdatedBy = actor

	if err := s.reservations.Allocate([]model.Reservation{row}); err != nil {
		return nil, err
	}

	item, err := s.items.FindByID(req.ItemID, req.IsRedShelf)
	itemName := req.ItemID.String()
	if err == nil {
		itemName = item.Name
	}
	s.audits.Append("reservation:create",
		fmt.Sprintf("reserved %d units of %q", req.Quantity, itemName), actor)

	s.wsHub.Publish(ws.Event{
		Type:   "reservation_update",
		Action: "created",
		Payload: map[string]interface{}{
			"reservation_id": row.ID,
			"item_id":        req.ItemID,
			"quantity":       req.Quantity,
		},
		Actor: actor,
	})
	return &row, nil
}

// ReserveKit inserts the parent row and all component rows in one atomic
// allocation; either the whole kit is held or nothing is.
func (s *reservationService) ReserveKit(req *ReserveKitRequest, actor string) (*model.Reservation, []model.Reservation, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, nil, fmt.Errorf("%w: field '%s' failed on tag '%s'",
			invariant.ErrInvalidInput, first.FailedField, first.Tag)
	}

	kit, err := s.kits.FindByID(req.KitID)
	if err != nil {
		return nil, nil, err
	}
	if len(kit.Components) == 0 {
		return nil, nil, fmt.Errorf("%w: kit %q has no components", invariant.ErrInvalidInput, kit.Name)
	}

	kitID := kit.ID
	parent := model.Reservation{
		KitID:        &kitID,
		Quantity:     req.Quantity,
		TechnicianID: req.TechnicianID,
		Status:       model.ReservationActive,
	}
	parent.EnsureBase()
	parent.CreatedBy = actor
	parent.UpdatedBy = actor
	parentID := parent.ID

	rows := make([]model.Reservation, 0, len(kit.Components)+1)
	rows = append(rows, parent)
	for _, c := range kit.Components {
		itemID := c.ItemID
		child := model.Reservation{
			ItemID:       &itemID,
			KitID:        &kitID,
			ParentID:     &parentID,
			Quantity:     c.QuantityPerKit * req.Quantity,
			TechnicianID: req.TechnicianID,
			Status:       model.ReservationActive,
		}
		child.EnsureBase()
		child.CreatedBy = actor
		child.UpdatedBy = actor
		rows = append(rows, child)
	}

	if err := s.reservations.Allocate(rows); err != nil {
		return nil, nil, err
	}

	s.audits.Append("reservation:create",
		fmt.Sprintf("reserved %d x kit %q (%d component lines)", req.Quantity, kit.Name, len(kit.Components)), actor)

	s.wsHub.Publish(ws.Event{
		Type:   "reservation_update",
		Action: "created",
		Payload: map[string]interface{}{
			"reservation_id": parent.ID,
			"kit_id":         kit.ID,
			"quantity":       req.Quantity,
		},
		Actor: actor,
	})
	return &rows[0], rows[1:], nil
}

// Release cancels a reservation and, for a kit parent, every component row
// under it. Releasing an already cancelled reservation is a no-op; a
// fulfilled one cannot go back.
func (s *reservationService) Release(id uuid.UUID, actor string) error {
	res, err := s.reservations.FindByID(id)
	if err != nil {
		return err
	}
	switch res.Status {
	case model.ReservationCancelled:
		return nil
	case model.ReservationFulfilled:
		return fmt.Errorf("%w: reservation already fulfilled", invariant.ErrInvalidState)
	}

	if err := s.reservations.UpdateStatus(id, model.ReservationCancelled, actor); err != nil {
		return err
	}
	if res.KitID != nil && res.ParentID == nil {
		children, err := s.reservations.FindByParent(id)
		if err != nil {
			return err
		}
		for _, child := range children {
			if child.Status != model.ReservationActive {
				continue
			}
			if err := s.reservations.UpdateStatus(child.ID, model.ReservationCancelled, actor); err != nil {
				return err
			}
		}
	}

	s.audits.Append("reservation:release", fmt.Sprintf("released reservation %s", id), actor)
	s.wsHub.Publish(ws.Event{
		Type:    "reservation_update",
		Action:  "released",
		Payload: map[string]interface{}{"reservation_id": id},
		Actor:   actor,
	})
	return nil
}

// Fulfill converts a held reservation into real outbound stock. This is the
// only path from active to fulfilled, and the outbound movement goes through
// the ledger like any other write. A kit parent fulfills every component row.
func (s *reservationService) Fulfill(id uuid.UUID, actor string) (*model.Movement, error) {
	res, err := s.reservations.FindByID(id)
	if err != nil {
		return nil, err
	}
	if res.Status != model.ReservationActive {
		return nil, fmt.Errorf("%w: reservation is %s", invariant.ErrInvalidState, res.Status)
	}

	var first *model.Movement
	if res.ItemID != nil {
		first, err = s.fulfillRow(res, actor)
		if err != nil {
			return nil, err
		}
	} else {
		children, err := s.reservations.FindByParent(id)
		if err != nil {
			return nil, err
		}
		for i := range children {
			if children[i].Status != model.ReservationActive {
				continue
			}
			mv, err := s.fulfillRow(&children[i], actor)
			if err != nil {
				return nil, err
			}
			if first == nil {
				first = mv
			}
		}
	}

	if err := s.reservations.UpdateStatus(id, model.ReservationFulfilled, actor); err != nil {
		return nil, err
	}

	s.audits.Append("reservation:fulfill", fmt.Sprintf("fulfilled reservation %s", id), actor)
	s.wsHub.Publish(ws.Event{
		Type:    "reservation_update",
		Action:  "fulfilled",
		Payload: map[string]interface{}{"reservation_id": id},
		Actor:   actor,
	})
	return first, nil
}

func (s *reservationService) fulfillRow(res *model.Reservation, actor string) (*model.Movement, error) {
	movement, _, err := s.ledger.AddMovement(repository.AddMovementParams{
		ItemID:       *res.ItemID,
		RedShelf:     res.IsRedShelf,
		Type:         model.MovementOut,
		Quantity:     res.Quantity,
		Date:         time.Now(),
		TechnicianID: res.TechnicianID,
		Notes:        fmt.Sprintf("fulfillment of reservation %s", res.ID),
		Actor:        actor,
	})
	if err != nil {
		return nil, err
	}
	if res.ParentID != nil {
		if err := s.reservations.UpdateStatus(res.ID, model.ReservationFulfilled, actor); err != nil {
			return nil, err
		}
	}
	return movement, nil
}

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

// MovementRequest is the caller payload for a ledger write. Quantity is
// always positive; the type decides the sign of the stock effect.
type MovementRequest struct {
	ItemID       uuid.UUID          `json:"item_id" validate:"uuid_required"`
	IsRedShelf   bool               `json:"is_red_shelf"`
	Type         model.MovementType `json:"type" validate:"required,oneof=in out"`
	Quantity     int                `json:"quantity" validate:"required,gt=0"`
	Date         time.Time          `json:"date"`
	TechnicianID *uuid.UUID         `json:"technician_id,omitempty"`
	Notes        string             `json:"notes,omitempty"`
}

// LedgerService is the only path that changes item quantities. Each accepted
// write lands as one atomic unit in the store: the movement, the quantity
// update and the audit entry together.
type LedgerService interface {
	RecordMovement(req *MovementRequest, actor string) (*model.Movement, *model.Item, error)
	AdjustQuantity(itemID uuid.UUID, newQuantity int, notes string, isRedShelf bool, actor string) (*model.Movement, *model.Item, error)
	History(itemID uuid.UUID) ([]model.Movement, error)
	GetAllMovements() ([]model.Movement, error)
}

type ledgerService struct {
	store        repository.LedgerStore
	movementRepo repository.MovementRepository
	wsHub        *ws.Hub
}

func NewLedgerService(store repository.LedgerStore, movementRepo repository.MovementRepository, hub *ws.Hub) LedgerService {
	return &ledgerService{
		store:        store,
		movementRepo: movementRepo,
		wsHub:        hub,
	}
}

func (s *ledgerService) RecordMovement(req *MovementRequest, actor string) (*model.Movement, *model.Item, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, nil, fmt.Errorf("%w: field '%s' failed on tag '%s'",
			invariant.ErrInvalidInput, first.FailedField, first.Tag)
	}
	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	movement, item, err := s.store.AddMovement(repository.AddMovementParams{
		ItemID:       req.ItemID,
		RedShelf:     req.IsRedShelf,
		Type:         req.Type,
		Quantity:     req.Quantity,
		Date:         req.Date,
		TechnicianID: req.TechnicianID,
		Notes:        req.Notes,
		Actor:        actor,
	})
	if err != nil {
		return nil, nil, err
	}

	s.wsHub.Publish(ws.Event{
		Type:   "stock_update",
		Action: "movement_recorded",
		Payload: map[string]interface{}{
			"movement_id": movement.ID,
			"item_id":     item.ID,
			"item_name":   item.Name,
			"type":        movement.Type,
			"quantity":    movement.Quantity,
			"new_balance": movement.Balance,
		},
		Actor:   actor,
		Message: fmt.Sprintf("%s moved %+d units of '%s'", actor, movement.Quantity, item.Name),
	})

	return movement, item, nil
}

func (s *ledgerService) AdjustQuantity(itemID uuid.UUID, newQuantity int, notes string, isRedShelf bool, actor string) (*model.Movement, *model.Item, error) {
	movement, item, err := s.store.AdjustQuantity(itemID, newQuantity, notes, isRedShelf, actor)
	if err != nil {
		return nil, nil, err
	}

	s.wsHub.Publish(ws.Event{
		Type:   "stock_update",
		Action: "quantity_adjusted",
		Payload: map[string]interface{}{
			"movement_id": movement.ID,
			"item_id":     item.ID,
			"item_name":   item.Name,
			"delta":       movement.Quantity,
			"new_balance": movement.Balance,
		},
		Actor:   actor,
		Message: fmt.Sprintf("%s adjusted '%s' to %d units", actor, item.Name, newQuantity),
	})

	return movement, item, nil
}

// History returns the item's ledger oldest-first, the order in which
// replaying the signed quantities from zero rebuilds the current balance.
func (s *ledgerService) History(itemID uuid.UUID) ([]model.Movement, error) {
	return s.movementRepo.FindByItem(itemID)
}

func (s *ledgerService) GetAllMovements() ([]model.Movement, error) {
	return s.movementRepo.FindAll()
}

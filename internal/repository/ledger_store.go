package repository

import (
	"errors"
	"fmt"
	"time"

	"go-almoxarifado/internal/invariant"
	"go-almoxarifado/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddMovementParams carries one ledger write.
type AddMovementParams struct {
	ItemID       uuid.UUID
	RedShelf     bool
	Type         model.MovementType
	Quantity     int
	Date         time.Time
	TechnicianID *uuid.UUID
	Notes        string
	Actor        string
}

// Adjustment sets an item to an absolute quantity; the store derives the
// signed delta against whatever the quantity is when the write lands.
type Adjustment struct {
	ItemID      uuid.UUID
	RedShelf    bool
	NewQuantity int
	Notes       string
}

// LedgerStore is the privileged atomic procedure the ledger engine requires
// from its provider: movement insert, quantity update and audit insert land
// together or not at all.
type LedgerStore interface {
	AddMovement(p AddMovementParams) (*model.Movement, *model.Item, error)
	AdjustQuantity(itemID uuid.UUID, newQuantity int, notes string, redShelf bool, actor string) (*model.Movement, *model.Item, error)
	AdjustMany(adjs []Adjustment, notes, actor string) ([]model.Movement, error)
}

type gormLedgerStore struct {
	db *gorm.DB
}

func NewLedgerStore(db *gorm.DB) LedgerStore {
	return &gormLedgerStore{db}
}

// The quantity update is a compare-and-swap on the value read outside the
// transaction; a raced writer makes RowsAffected come back zero and the loop
// re-reads. Bounded so a hot item surfaces ErrConcurrentModification instead
// of spinning.
const casRetries = 3

var errStale = errors.New("stale quantity read")

// SignedDelta converts a movement request into its effect on stock.
func SignedDelta(movementType model.MovementType, quantity int) int {
	if movementType == model.MovementOut {
		return -quantity
	}
	return quantity
}

func (s *gormLedgerStore) AddMovement(p AddMovementParams) (*model.Movement, *model.Item, error) {
	delta := SignedDelta(p.Type, p.Quantity)
	table := model.ItemTable(p.RedShelf)

	for attempt := 0; attempt < casRetries; attempt++ {
		var item model.Item
		if err := s.db.Table(table).First(&item, "id = ?", p.ItemID).Error; err != nil {
			return nil, nil, translate(err)
		}
		if err := invariant.CheckQuantityChange(item.Quantity, delta); err != nil {
			return nil, nil, err
		}
		newQuantity := item.Quantity + delta

		movement := &model.Movement{
			ItemID:       p.ItemID,
			IsRedShelf:   p.RedShelf,
			Type:         p.Type,
			Quantity:     delta,
			Balance:      newQuantity,
			Date:         p.Date,
			TechnicianID: p.TechnicianID,
			Notes:        p.Notes,
		}
		movement.CreatedBy = p.Actor
		movement.UpdatedBy = p.Actor

		err := s.db.Transaction(func(tx *gorm.DB) error {
			res := tx.Table(table).
				Where("id = ? AND quantity = ?", p.ItemID, item.Quantity).
				Updates(map[string]interface{}{"quantity": newQuantity, "updated_by": p.Actor})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errStale
			}
			if err := tx.Create(movement).Error; err != nil {
				return err
			}
			audit := &model.AuditLog{
				Action:  "movement:" + string(p.Type),
				Details: movementDetails(item.Name, delta, newQuantity, p.Notes),
				User:    p.Actor,
			}
			return tx.Create(audit).Error
		})
		if errors.Is(err, errStale) {
			continue
		}
		if err != nil {
			return nil, nil, translate(err)
		}
		item.Quantity = newQuantity
		item.UpdatedBy = p.Actor
		return movement, &item, nil
	}
	return nil, nil, ErrConcurrentModification
}

func (s *gormLedgerStore) AdjustQuantity(itemID uuid.UUID, newQuantity int, notes string, redShelf bool, actor string) (*model.Movement, *model.Item, error) {
	table := model.ItemTable(redShelf)

	for attempt := 0; attempt < casRetries; attempt++ {
		var item model.Item
		if err := s.db.Table(table).First(&item, "id = ?", itemID).Error; err != nil {
			return nil, nil, translate(err)
		}
		delta := newQuantity - item.Quantity
		if err := invariant.CheckQuantityChange(item.Quantity, delta); err != nil {
			return nil, nil, err
		}

		// Zero delta still gets a ledger entry: every accepted adjustment
		// leaves a movement plus an audit row behind.
		movement := &model.Movement{
			ItemID:     itemID,
			IsRedShelf: redShelf,
			Type:       model.MovementAdjustment,
			Quantity:   delta,
			Balance:    newQuantity,
			Date:       time.Now(),
			Notes:      notes,
		}
		movement.CreatedBy = actor
		movement.UpdatedBy = actor

		err := s.db.Transaction(func(tx *gorm.DB) error {
			res := tx.Table(table).
				Where("id = ? AND quantity = ?", itemID, item.Quantity).
				Updates(map[string]interface{}{"quantity": newQuantity, "updated_by": actor})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errStale
			}
			if err := tx.Create(movement).Error; err != nil {
				return err
			}
			audit := &model.AuditLog{
				Action:  "adjustment",
				Details: movementDetails(item.Name, delta, newQuantity, notes),
				User:    actor,
			}
			return tx.Create(audit).Error
		})
		if errors.Is(err, errStale) {
			continue
		}
		if err != nil {
			return nil, nil, translate(err)
		}
		item.Quantity = newQuantity
		item.UpdatedBy = actor
		return movement, &item, nil
	}
	return nil, nil, ErrConcurrentModification
}

// AdjustMany applies a batch of absolute adjustments in one transaction with
// the item rows locked; either every adjustment lands or none do.
func (s *gormLedgerStore) AdjustMany(adjs []Adjustment, notes, actor string) ([]model.Movement, error) {
	movements := make([]model.Movement, 0, len(adjs))
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, adj := range adjs {
			table := model.ItemTable(adj.RedShelf)
			var item model.Item
			if err := tx.Table(table).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&item, "id = ?", adj.ItemID).Error; err != nil {
				return err
			}
			delta := adj.NewQuantity - item.Quantity
			if err := invariant.CheckQuantityChange(item.Quantity, delta); err != nil {
				return err
			}
			lineNotes := adj.Notes
			if lineNotes == "" {
				lineNotes = notes
			}
			movement := model.Movement{
				ItemID:     adj.ItemID,
				IsRedShelf: adj.RedShelf,
				Type:       model.MovementAdjustment,
				Quantity:   delta,
				Balance:    adj.NewQuantity,
				Date:       time.Now(),
				Notes:      lineNotes,
			}
			movement.CreatedBy = actor
			movement.UpdatedBy = actor

			if err := tx.Table(table).Where("id = ?", adj.ItemID).
				Updates(map[string]interface{}{"quantity": adj.NewQuantity, "updated_by": actor}).Error; err != nil {
				return err
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
			audit := &model.AuditLog{
				Action:  "adjustment",
				Details: movementDetails(item.Name, delta, adj.NewQuantity, lineNotes),
				User:    actor,
			}
			if err := tx.Create(audit).Error; err != nil {
				return err
			}
			movements = append(movements, movement)
		}
		return nil
	})
	if err != nil {
		if isDomainErr(err) {
			return nil, err
		}
		return nil, translate(err)
	}
	return movements, nil
}

func movementDetails(itemName string, delta, balance int, notes string) string {
	details := fmt.Sprintf("item %q: %+d units, balance %d", itemName, delta, balance)
	if notes != "" {
		details += " - " + notes
	}
	return details
}

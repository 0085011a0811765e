package repository

import (
	"go-almoxarifado/internal/invariant"
	"go-almoxarifado/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReservationRepository owns reservation rows. Allocate is the privileged
// atomic procedure: the whole row set is inserted under row locks on the
// referenced items with the availability invariant re-checked inside the
// transaction, so a concurrent reader never observes a partial reservation.
type ReservationRepository interface {
	FindAll() ([]model.Reservation, error)
	FindByID(id uuid.UUID) (*model.Reservation, error)
	FindByParent(parentID uuid.UUID) ([]model.Reservation, error)
	ActiveByItem(itemID uuid.UUID, redShelf bool) ([]model.Reservation, error)
	ActiveQuantities(redShelf bool) (map[uuid.UUID]int, error)
	Allocate(rows []model.Reservation) error
	UpdateStatus(id uuid.UUID, status model.ReservationStatus, actor string) error
}

type reservationRepo struct {
	db *gorm.DB
}

func NewReservationRepo(db *gorm.DB) ReservationRepository {
	return &reservationRepo{db}
}

func (r *reservationRepo) FindAll() ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := r.db.Order("created_at DESC").Find(&reservations).Error
	return reservations, translate(err)
}

func (r *reservationRepo) FindByID(id uuid.UUID) (*model.Reservation, error) {
	var reservation model.Reservation
	if err := r.db.First(&reservation, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &reservation, nil
}

func (r *reservationRepo) FindByParent(parentID uuid.UUID) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := r.db.Where("parent_id = ?", parentID).Find(&reservations).Error
	return reservations, translate(err)
}

func (r *reservationRepo) ActiveByItem(itemID uuid.UUID, redShelf bool) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := r.db.
		Where("item_id = ? AND is_red_shelf = ? AND status = ?", itemID, redShelf, model.ReservationActive).
		Find(&reservations).Error
	return reservations, translate(err)
}

// ActiveQuantities sums active allocations per item. Kit parent rows carry no
// item_id and are excluded by the filter; their component rows do the counting.
func (r *reservationRepo) ActiveQuantities(redShelf bool) (map[uuid.UUID]int, error) {
	type row struct {
		ItemID   uuid.UUID
		Reserved int
	}
	var rows []row
	err := r.db.Model(&model.Reservation{}).
		Select("item_id, COALESCE(SUM(quantity), 0) as reserved").
		Where("item_id IS NOT NULL AND is_red_shelf = ? AND status = ?", redShelf, model.ReservationActive).
		Group("item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	result := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		result[row.ItemID] = row.Reserved
	}
	return result, nil
}

func (r *reservationRepo) Allocate(rows []model.Reservation) error {
	if len(rows) == 0 {
		return nil
	}
	// Requested quantities are aggregated per item first so a batch that
	// hits the same item twice is checked against the combined demand.
	type demand struct {
		itemID   uuid.UUID
		redShelf bool
	}
	requested := map[demand]int{}
	order := []demand{}
	for i := range rows {
		if rows[i].ItemID == nil {
			continue // kit parent, carries no stock
		}
		key := demand{*rows[i].ItemID, rows[i].IsRedShelf}
		if _, seen := requested[key]; !seen {
			order = append(order, key)
		}
		requested[key] += rows[i].Quantity
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, key := range order {
			var item model.Item
			if err := tx.Table(model.ItemTable(key.redShelf)).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&item, "id = ?", key.itemID).Error; err != nil {
				return err
			}
			var reserved int
			if err := tx.Model(&model.Reservation{}).
				Select("COALESCE(SUM(quantity), 0)").
				Where("item_id = ? AND is_red_shelf = ? AND status = ?",
					key.itemID, key.redShelf, model.ReservationActive).
				Scan(&reserved).Error; err != nil {
				return err
			}
			if err := invariant.CheckReservation(item.Quantity, reserved, requested[key]); err != nil {
				return err
			}
		}
		for i := range rows {
			rows[i].EnsureBase()
			if err := tx.Create(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if isDomainErr(err) {
		return err
	}
	return translate(err)
}

func (r *reservationRepo) UpdateStatus(id uuid.UUID, status model.ReservationStatus, actor string) error {
	res := r.db.Model(&model.Reservation{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_by": actor})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

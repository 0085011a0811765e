package repository

import (
	"time"

	"go-almoxarifado/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockMovementData aggregates chart data per day.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// MovementRepository is read-only: movements are only ever written through
// LedgerStore so the insert can never run outside the atomic unit.
type MovementRepository interface {
	FindAll() ([]model.Movement, error)
	FindByItem(itemID uuid.UUID) ([]model.Movement, error)
	StockMovement(startDate, endDate time.Time) ([]StockMovementData, error)
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) FindAll() ([]model.Movement, error) {
	var movements []model.Movement
	err := r.db.Order("created_at DESC").Find(&movements).Error
	return movements, translate(err)
}

// FindByItem returns the item's ledger in application order, oldest first.
func (r *movementRepo) FindByItem(itemID uuid.UUID) ([]model.Movement, error) {
	var movements []model.Movement
	err := r.db.Where("item_id = ?", itemID).Order("created_at ASC").Find(&movements).Error
	return movements, translate(err)
}

func (r *movementRepo) StockMovement(startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	rows, err := r.db.Model(&model.Movement{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN type = 'in' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = 'out' THEN -quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, translate(err)
		}
		results = append(results, data)
	}

	return results, nil
}

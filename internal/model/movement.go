package model

import (
	"time"

	"github.com/google/uuid"
)

type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
)

// Movement is the immutable ledger entry. Quantity is the signed effect on
// stock (+ for in, - for out, either sign for adjustment) and Balance is the
// on-hand quantity right after the movement was applied. Movements are never
// updated or deleted; replaying them from zero reconstructs the item quantity.
type Movement struct {
	BaseModel
	ItemID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"item_id" validate:"uuid_required"`
	IsRedShelf   bool         `gorm:"not null;default:false" json:"is_red_shelf"`
	Type         MovementType `gorm:"type:varchar(12);not null" json:"type" validate:"required,oneof=in out adjustment"`
	Quantity     int          `gorm:"not null" json:"quantity"`
	Balance      int          `gorm:"not null" json:"balance"`
	Date         time.Time    `gorm:"not null" json:"date"`
	TechnicianID *uuid.UUID   `gorm:"type:uuid" json:"technician_id,omitempty"`
	Notes        string       `gorm:"type:text" json:"notes,omitempty"`
}

func (Movement) TableName() string {
	return "movements"
}

package model

import "github.com/google/uuid"

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationFulfilled ReservationStatus = "fulfilled"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation holds stock without decrementing it. A direct reservation has
// ItemID set. A kit reservation is one parent row (KitID set, no ItemID) plus
// one component row per kit line (ItemID + ParentID set); availability math
// only ever sums rows with an ItemID, so parents are never double counted.
// Terminal rows are kept for audit, never purged.
type Reservation struct {
	BaseModel
	ItemID       *uuid.UUID        `gorm:"type:uuid;index" json:"item_id,omitempty"`
	IsRedShelf   bool              `gorm:"not null;default:false" json:"is_red_shelf"`
	KitID        *uuid.UUID        `gorm:"type:uuid;index" json:"kit_id,omitempty"`
	ParentID     *uuid.UUID        `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Quantity     int               `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	TechnicianID *uuid.UUID        `gorm:"type:uuid" json:"technician_id,omitempty"`
	Status       ReservationStatus `gorm:"type:varchar(12);not null;default:'active'" json:"status"`
}

func (Reservation) TableName() string {
	return "reservations"
}

package model

import "github.com/google/uuid"

type PickingListStatus string

const (
	PickingOpen       PickingListStatus = "open"
	PickingInProgress PickingListStatus = "in_progress"
	PickingCompleted  PickingListStatus = "completed"
)

type PickingList struct {
	BaseModel
	TechnicianID *uuid.UUID        `gorm:"type:uuid" json:"technician_id,omitempty"`
	Status       PickingListStatus `gorm:"type:varchar(12);not null;default:'open'" json:"status"`
	Notes        string            `gorm:"type:text" json:"notes,omitempty"`
	Lines        []PickingListLine `gorm:"foreignKey:PickingListID;constraint:OnDelete:CASCADE" json:"lines" validate:"required,min=1,dive"`
}

type PickingListLine struct {
	BaseModel
	PickingListID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"picking_list_id"`
	ItemID            uuid.UUID  `gorm:"type:uuid;not null" json:"item_id" validate:"uuid_required"`
	RequestedQuantity int        `gorm:"not null" json:"requested_quantity" validate:"required,gt=0"`
	PickedQuantity    int        `gorm:"not null;default:0" json:"picked_quantity"`
	ReservationID     *uuid.UUID `gorm:"type:uuid" json:"reservation_id,omitempty"`
}

func (PickingList) TableName() string {
	return "picking_lists"
}

func (PickingListLine) TableName() string {
	return "picking_list_lines"
}

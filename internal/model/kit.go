package model

import "github.com/google/uuid"

// Kit is a virtual item assembled from fixed ratios of real items. It is
// never stocked itself; its availability is derived from its components.
type Kit struct {
	BaseModel
	Name        string         `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Components  []KitComponent `gorm:"foreignKey:KitID;constraint:OnDelete:CASCADE" json:"components" validate:"required,min=1,dive"`
}

type KitComponent struct {
	BaseModel
	KitID          uuid.UUID `gorm:"type:uuid;not null;index" json:"kit_id"`
	ItemID         uuid.UUID `gorm:"type:uuid;not null" json:"item_id" validate:"uuid_required"`
	QuantityPerKit int       `gorm:"not null" json:"quantity_per_kit" validate:"required,gt=0"`
	Position       int       `gorm:"not null;default:0" json:"position"`
}

func (Kit) TableName() string {
	return "kits"
}

func (KitComponent) TableName() string {
	return "kit_components"
}

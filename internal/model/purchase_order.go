package model

import "github.com/google/uuid"

type PurchaseOrderStatus string

const (
	POStatusDraft     PurchaseOrderStatus = "draft"
	POStatusSubmitted PurchaseOrderStatus = "submitted"
	POStatusReceived  PurchaseOrderStatus = "received"
	POStatusCancelled PurchaseOrderStatus = "cancelled"
)

type PurchaseOrder struct {
	BaseModel
	PONumber   string              `gorm:"column:po_number;type:varchar(32);uniqueIndex;not null" json:"po_number"`
	SupplierID uuid.UUID           `gorm:"type:uuid;not null" json:"supplier_id" validate:"uuid_required"`
	Status     PurchaseOrderStatus `gorm:"type:varchar(12);not null;default:'draft'" json:"status"`
	Notes      string              `gorm:"type:text" json:"notes,omitempty"`
	Lines      []PurchaseOrderLine `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"lines" validate:"required,min=1,dive"`
}

type PurchaseOrderLine struct {
	BaseModel
	PurchaseOrderID  uuid.UUID `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	ItemID           uuid.UUID `gorm:"type:uuid;not null" json:"item_id" validate:"uuid_required"`
	Quantity         int       `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	ReceivedQuantity int       `gorm:"not null;default:0" json:"received_quantity"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

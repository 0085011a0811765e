package model

import "github.com/google/uuid"

// Item is a stocked warehouse item. The same struct backs the regular pool
// ("items") and the critical red shelf pool ("red_shelf_items"); the two
// tables share invariants but never share ids. Quantity is only ever changed
// through the ledger, never by a direct field write.
type Item struct {
	BaseModel
	Name                string     `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category            string     `gorm:"type:varchar(100);not null" json:"category" validate:"required"`
	Quantity            int        `gorm:"not null;default:0" json:"quantity" validate:"gte=0"`
	ReorderPoint        int        `gorm:"not null;default:0" json:"reorder_point" validate:"gte=0"`
	Price               int64      `gorm:"default:0" json:"price"`
	PreferredSupplierID *uuid.UUID `gorm:"type:uuid" json:"preferred_supplier_id,omitempty"`
	Barcode             string     `gorm:"type:varchar(64)" json:"barcode,omitempty"`
	Location            string     `gorm:"type:varchar(64)" json:"location,omitempty"`
}

// ItemTable resolves the physical table for a pool.
func ItemTable(redShelf bool) string {
	if redShelf {
		return "red_shelf_items"
	}
	return "items"
}

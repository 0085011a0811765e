package repository

import (
	"go-almoxarifado/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseOrderRepository interface {
	FindAll() ([]model.PurchaseOrder, error)
	FindByID(id uuid.UUID) (*model.PurchaseOrder, error)
	Create(po *model.PurchaseOrder) error
	Update(po *model.PurchaseOrder) error
	OpenLineExists(itemID uuid.UUID) (bool, error)
}

type purchaseOrderRepo struct {
	db *gorm.DB
}

func NewPurchaseOrderRepo(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepo{db}
}

func (r *purchaseOrderRepo) FindAll() ([]model.PurchaseOrder, error) {
	var orders []model.PurchaseOrder
	err := r.db.Preload("Lines").Order("created_at DESC").Find(&orders).Error
	return orders, translate(err)
}

func (r *purchaseOrderRepo) FindByID(id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	if err := r.db.Preload("Lines").First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *purchaseOrderRepo) Create(po *model.PurchaseOrder) error {
	return translate(r.db.Create(po).Error)
}

func (r *purchaseOrderRepo) Update(po *model.PurchaseOrder) error {
	return translate(r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(po).Error)
}

// OpenLineExists reports whether any draft or submitted order still
// references the item; such items must not be deleted.
func (r *purchaseOrderRepo) OpenLineExists(itemID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.PurchaseOrderLine{}).
		Joins("JOIN purchase_orders ON purchase_orders.id = purchase_order_lines.purchase_order_id").
		Where("purchase_order_lines.item_id = ? AND purchase_orders.status IN ?",
			itemID, []model.PurchaseOrderStatus{model.POStatusDraft, model.POStatusSubmitted}).
		Count(&count).Error
	return count > 0, translate(err)
}

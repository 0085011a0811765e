package repository

import (
	"go-almoxarifado/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemStats feeds the dashboard overview.
type ItemStats struct {
	TotalItems     int64 `json:"total_items"`
	LowStockCount  int64 `json:"low_stock_count"`
	TotalValuation int64 `json:"total_valuation"`
}

// ItemRepository serves both item pools; redShelf picks the table. Update
// deliberately cannot touch quantity: stock only moves through LedgerStore.
type ItemRepository interface {
	FindAll(redShelf bool) ([]model.Item, error)
	FindByID(id uuid.UUID, redShelf bool) (*model.Item, error)
	Create(item *model.Item, redShelf bool) error
	CreateMany(items []model.Item, redShelf bool) ([]model.Item, error)
	Update(item *model.Item, redShelf bool) error
	Delete(id uuid.UUID, redShelf bool) error
	ReassignCategory(from, to string, redShelf bool) (int64, error)
	Stats(redShelf bool) (*ItemStats, error)
}

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db}
}

func (r *itemRepo) table(redShelf bool) *gorm.DB {
	return r.db.Table(model.ItemTable(redShelf))
}

func (r *itemRepo) FindAll(redShelf bool) ([]model.Item, error) {
	var items []model.Item
	err := r.table(redShelf).Order("name ASC").Find(&items).Error
	return items, translate(err)
}

func (r *itemRepo) FindByID(id uuid.UUID, redShelf bool) (*model.Item, error) {
	var item model.Item
	if err := r.table(redShelf).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *itemRepo) Create(item *model.Item, redShelf bool) error {
	item.EnsureBase()
	return translate(r.table(redShelf).Create(item).Error)
}

func (r *itemRepo) CreateMany(items []model.Item, redShelf bool) ([]model.Item, error) {
	for i := range items {
		items[i].EnsureBase()
	}
	if err := r.table(redShelf).CreateInBatches(items, 100).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (r *itemRepo) Update(item *model.Item, redShelf bool) error {
	// Explicit column list keeps quantity out of reach of plain updates.
	res := r.table(redShelf).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"name":                  item.Name,
		"category":              item.Category,
		"reorder_point":         item.ReorderPoint,
		"price":                 item.Price,
		"preferred_supplier_id": item.PreferredSupplierID,
		"barcode":               item.Barcode,
		"location":              item.Location,
		"updated_by":            item.UpdatedBy,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *itemRepo) Delete(id uuid.UUID, redShelf bool) error {
	res := r.table(redShelf).Where("id = ?", id).Delete(&model.Item{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *itemRepo) ReassignCategory(from, to string, redShelf bool) (int64, error) {
	res := r.table(redShelf).Where("category = ?", from).Update("category", to)
	return res.RowsAffected, translate(res.Error)
}

func (r *itemRepo) Stats(redShelf bool) (*ItemStats, error) {
	var stats ItemStats
	if err := r.table(redShelf).Count(&stats.TotalItems).Error; err != nil {
		return nil, translate(err)
	}
	if err := r.table(redShelf).Where("quantity <= reorder_point").Count(&stats.LowStockCount).Error; err != nil {
		return nil, translate(err)
	}
	if err := r.table(redShelf).Select("COALESCE(SUM(quantity * price), 0)").Scan(&stats.TotalValuation).Error; err != nil {
		return nil, translate(err)
	}
	return &stats, nil
}

package repository

import (
	"go-almoxarifado/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PickingListRepository interface {
	FindAll() ([]model.PickingList, error)
	FindByID(id uuid.UUID) (*model.PickingList, error)
	Create(list *model.PickingList) error
	Update(list *model.PickingList) error
	OpenLineExists(itemID uuid.UUID) (bool, error)
}

type pickingListRepo struct {
	db *gorm.DB
}

func NewPickingListRepo(db *gorm.DB) PickingListRepository {
	return &pickingListRepo{db}
}

func (r *pickingListRepo) FindAll() ([]model.PickingList, error) {
	var lists []model.PickingList
	err := r.db.Preload("Lines").Order("created_at DESC").Find(&lists).Error
	return lists, translate(err)
}

func (r *pickingListRepo) FindByID(id uuid.UUID) (*model.PickingList, error) {
	var list model.PickingList
	if err := r.db.Preload("Lines").First(&list, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &list, nil
}

func (r *pickingListRepo) Create(list *model.PickingList) error {
	return translate(r.db.Create(list).Error)
}

func (r *pickingListRepo) Update(list *model.PickingList) error {
	return translate(r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(list).Error)
}

func (r *pickingListRepo) OpenLineExists(itemID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.PickingListLine{}).
		Joins("JOIN picking_lists ON picking_lists.id = picking_list_lines.picking_list_id").
		Where("picking_list_lines.item_id = ? AND picking_lists.status <> ?",
			itemID, model.PickingCompleted).
		Count(&count).Error
	return count > 0, translate(err)
}

package repository

import (
	"go-almoxarifado/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KitRepository interface {
	FindAll() ([]model.Kit, error)
	FindByID(id uuid.UUID) (*model.Kit, error)
	Create(kit *model.Kit) error
	Update(kit *model.Kit) error
	Delete(id uuid.UUID) error
}

type kitRepo struct {
	db *gorm.DB
}

func NewKitRepo(db *gorm.DB) KitRepository {
	return &kitRepo{db}
}

func preloadComponents(db *gorm.DB) *gorm.DB {
	return db.Preload("Components", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *kitRepo) FindAll() ([]model.Kit, error) {
	var kits []model.Kit
	err := preloadComponents(r.db).Order("name ASC").Find(&kits).Error
	return kits, translate(err)
}

func (r *kitRepo) FindByID(id uuid.UUID) (*model.Kit, error) {
	var kit model.Kit
	if err := preloadComponents(r.db).First(&kit, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &kit, nil
}

func (r *kitRepo) Create(kit *model.Kit) error {
	return translate(r.db.Create(kit).Error)
}

// Update replaces the component set wholesale; kits are small and the lines
// carry no history worth diffing.
func (r *kitRepo) Update(kit *model.Kit) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("kit_id = ?", kit.ID).Delete(&model.KitComponent{}).Error; err != nil {
			return err
		}
		return tx.Save(kit).Error
	})
	return translate(err)
}

func (r *kitRepo) Delete(id uuid.UUID) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("kit_id = ?", id).Delete(&model.KitComponent{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Kit{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err)
}

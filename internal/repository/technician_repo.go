package repository

import (
	"go-almoxarifado/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TechnicianRepository interface {
	FindAll() ([]model.Technician, error)
	FindByID(id uuid.UUID) (*model.Technician, error)
	Create(technician *model.Technician) error
	Update(technician *model.Technician) error
	Delete(id uuid.UUID) error
}

type technicianRepo struct {
	db *gorm.DB
}

func NewTechnicianRepo(db *gorm.DB) TechnicianRepository {
	return &technicianRepo{db}
}

func (r *technicianRepo) FindAll() ([]model.Technician, error) {
	var technicians []model.Technician
	err := r.db.Order("name ASC").Find(&technicians).Error
	return technicians, translate(err)
}

func (r *technicianRepo) FindByID(id uuid.UUID) (*model.Technician, error) {
	var technician model.Technician
	if err := r.db.First(&technician, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &technician, nil
}

func (r *technicianRepo) Create(technician *model.Technician) error {
	return translate(r.db.Create(technician).Error)
}

func (r *technicianRepo) Update(technician *model.Technician) error {
	return translate(r.db.Save(technician).Error)
}

func (r *technicianRepo) Delete(id uuid.UUID) error {
	res := r.db.Where("id = ?", id).Delete(&model.Technician{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

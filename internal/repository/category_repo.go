package repository

import (
	"go-almoxarifado/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository interface {
	Names() ([]string, error)
	Add(name string) error
	AddMany(names []string) error
	Delete(name string) error
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) Names() ([]string, error) {
	var names []string
	err := r.db.Model(&model.Category{}).Order("name ASC").Pluck("name", &names).Error
	return names, translate(err)
}

func (r *categoryRepo) Add(name string) error {
	return translate(r.db.Create(&model.Category{Name: name}).Error)
}

// AddMany upserts, so re-importing known names is a no-op.
func (r *categoryRepo) AddMany(names []string) error {
	if len(names) == 0 {
		return nil
	}
	categories := make([]model.Category, len(names))
	for i, name := range names {
		categories[i] = model.Category{Name: name}
	}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error
	return translate(err)
}

func (r *categoryRepo) Delete(name string) error {
	res := r.db.Where("name = ?", name).Delete(&model.Category{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

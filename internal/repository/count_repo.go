package repository

import (
	"go-almoxarifado/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CountSessionRepository interface {
	FindAll() ([]model.CountSession, error)
	FindByID(id uuid.UUID) (*model.CountSession, error)
	Create(session *model.CountSession) error
	Update(session *model.CountSession) error
}

type countSessionRepo struct {
	db *gorm.DB
}

func NewCountSessionRepo(db *gorm.DB) CountSessionRepository {
	return &countSessionRepo{db}
}

func (r *countSessionRepo) FindAll() ([]model.CountSession, error) {
	var sessions []model.CountSession
	err := r.db.Preload("Lines").Order("created_at DESC").Find(&sessions).Error
	return sessions, translate(err)
}

func (r *countSessionRepo) FindByID(id uuid.UUID) (*model.CountSession, error) {
	var session model.CountSession
	if err := r.db.Preload("Lines").First(&session, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

func (r *countSessionRepo) Create(session *model.CountSession) error {
	return translate(r.db.Create(session).Error)
}

func (r *countSessionRepo) Update(session *model.CountSession) error {
	return translate(r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(session).Error)
}

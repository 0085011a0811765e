package repository

import (
	"go-almoxarifado/internal/model"

	"gorm.io/gorm"
)

// AuditLogRepository is append-only.
type AuditLogRepository interface {
	Append(action, details, user string) (*model.AuditLog, error)
	FindAll() ([]model.AuditLog, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditLogRepository {
	return &auditRepo{db}
}

func (r *auditRepo) Append(action, details, user string) (*model.AuditLog, error) {
	entry := &model.AuditLog{Action: action, Details: details, User: user}
	if err := r.db.Create(entry).Error; err != nil {
		return nil, translate(err)
	}
	return entry, nil
}

func (r *auditRepo) FindAll() ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := r.db.Order("created_at DESC").Find(&logs).Error
	return logs, translate(err)
}

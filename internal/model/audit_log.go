package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog is append-only. Every state-changing operation writes exactly one
// entry; entries are never updated or deleted.
type AuditLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	Action    string    `gorm:"type:varchar(100);not null" json:"action"`
	Details   string    `gorm:"type:text" json:"details"`
	User      string    `gorm:"type:varchar(255);not null" json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// EnsureID mirrors the GORM hook for stores that bypass GORM.
func (a *AuditLog) EnsureID() {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
}

package model

import "github.com/google/uuid"

type CountSessionStatus string

const (
	CountCounting  CountSessionStatus = "counting"
	CountReviewing CountSessionStatus = "reviewing"
	CountCommitted CountSessionStatus = "committed"
	CountCancelled CountSessionStatus = "cancelled"
)

// CountSession is one cycle count. SystemQuantity on each line is frozen when
// the session starts; stock that moves while the count is underway is not
// re-baselined automatically (an operator can recount a single line).
// Commit reconciles counted quantities against the quantity current at commit
// time, not against this baseline.
type CountSession struct {
	BaseModel
	Status CountSessionStatus `gorm:"type:varchar(12);not null;default:'counting'" json:"status"`
	Reason string             `gorm:"type:text" json:"reason,omitempty"`
	Lines  []CountLine        `gorm:"foreignKey:CountSessionID;constraint:OnDelete:CASCADE" json:"lines"`
}

type CountLine struct {
	BaseModel
	CountSessionID  uuid.UUID `gorm:"type:uuid;not null;index" json:"count_session_id"`
	ItemID          uuid.UUID `gorm:"type:uuid;not null" json:"item_id"`
	ItemName        string    `gorm:"type:varchar(255)" json:"item_name"`
	SystemQuantity  int       `gorm:"not null" json:"system_quantity"`
	CountedQuantity *int      `json:"counted_quantity,omitempty"`
	Discrepancy     int       `gorm:"not null;default:0" json:"discrepancy"`
}

func (CountSession) TableName() string {
	return "count_sessions"
}

func (CountLine) TableName() string {
	return "count_lines"
}

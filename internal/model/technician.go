package model

type Technician struct {
	BaseModel
	Name      string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Matricula string `gorm:"type:varchar(32)" json:"matricula,omitempty"`
}

func (Technician) TableName() string {
	return "technicians"
}

package model

type Supplier struct {
	BaseModel
	Name  string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Email string `gorm:"type:varchar(255)" json:"email,omitempty" validate:"omitempty,email"`
	Phone string `gorm:"type:varchar(32)" json:"phone,omitempty"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

package model

// DefaultCategory is the catch-all category. Deleting a category reassigns
// its items here, and the category itself can never be removed.
const DefaultCategory = "Outros"

// Category is a name-only registry; items reference it by name, not by id.
type Category struct {
	Name string `gorm:"type:varchar(100);primary_key" json:"name" validate:"required"`
}

func (Category) TableName() string {
	return "categories"
}

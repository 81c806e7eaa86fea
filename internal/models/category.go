package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome   CategoryType = "income"
	CategoryTypeExpense  CategoryType = "expense"
	CategoryTypeTransfer CategoryType = "transfer"
)

// Category represents a transaction category within a space.
type Category struct {
	Base
	SpaceID   string       `gorm:"type:uuid;not null;uniqueIndex:uq_categories_space_type_name" json:"space_id"`
	CreatedBy string       `gorm:"type:uuid;not null" json:"created_by"`
	Name      string       `gorm:"size:100;not null;uniqueIndex:uq_categories_space_type_name" json:"name"`
	Type      CategoryType `gorm:"not null;uniqueIndex:uq_categories_space_type_name" json:"type"`
	Color     string       `gorm:"size:7" json:"color"`
	Icon      string       `json:"icon"`
	ParentID  *string      `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	IsActive  bool         `gorm:"default:true" json:"is_active"`
	IsDefault bool         `gorm:"default:false" json:"is_default"`
}

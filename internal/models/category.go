package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category is a node in a user's two-level category tree. A category with no
// parent is a primary category; one with a parent is a subcategory.
type Category struct {
	Base
	UserID      string       `gorm:"type:uuid;not null;index;uniqueIndex:idx_category_user_name_parent" json:"user_id"`
	Name        string       `gorm:"not null;size:100;uniqueIndex:idx_category_user_name_parent" json:"name"`
	Type        CategoryType `gorm:"not null;size:20" json:"type"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
	Color       string       `gorm:"size:7" json:"color"`
	SortOrder   int          `gorm:"not null" json:"sort_order"`
	IsActive    bool         `gorm:"not null" json:"is_active"`
	ParentID    *string      `gorm:"type:uuid;index;uniqueIndex:idx_category_user_name_parent" json:"parent_id,omitempty"`

	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

// IsPrimary reports whether the category sits at the top of the tree.
func (c *Category) IsPrimary() bool {
	return c.ParentID == nil
}

// Budgetable reports whether budgets may track this category. Only expense
// categories carry spend.
func (c *Category) Budgetable() bool {
	return c.Type == CategoryTypeExpense
}

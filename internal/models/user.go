package models

// User owns categories, expenses, budgets and budget groups.
type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Password     string `gorm:"not null" json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	BaseCurrency string `gorm:"size:3" json:"base_currency"`
	IsActive     bool   `gorm:"not null" json:"is_active"`

	Categories   []Category    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Budgets      []Budget      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	BudgetGroups []BudgetGroup `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

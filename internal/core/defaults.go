package core

// DefaultCategories are seeded as system categories for a new owner.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Food", Type: Expense, Icon: "food"},
		{Name: "Transport", Type: Expense, Icon: "bus"},
		{Name: "Shopping", Type: Expense, Icon: "cart"},
		{Name: "Housing", Type: Expense, Icon: "home"},
		{Name: "Entertainment", Type: Expense, Icon: "film"},
		{Name: "Health", Type: Expense, Icon: "heart"},
		{Name: "Salary", Type: Income, Icon: "wallet"},
		{Name: "Bonus", Type: Income, Icon: "gift"},
		{Name: "Investment", Type: Income, Icon: "chart"},
		{Name: "Other Income", Type: Income, Icon: "coins"},
	}
}

package schema

// CoreShoppinglistTable represents the 'core.shoppinglist' table
type CoreShoppinglistTable struct {
	Table       string
	ID          string
	Name        string
	HouseholdID string
	CreatedAt   string
}

// CoreShoppinglist is the schema definition for core.shoppinglist
var CoreShoppinglist = CoreShoppinglistTable{
	Table:       "core.shoppinglist",
	ID:          "id",
	Name:        "name",
	HouseholdID: "householdid",
	CreatedAt:   "createdat",
}

func (t CoreShoppinglistTable) Columns() []string {
	return []string{t.ID, t.Name, t.HouseholdID, t.CreatedAt}
}

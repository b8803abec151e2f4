package schema

// CoreHouseholdTable represents the 'core.household' table
type CoreHouseholdTable struct {
	Table           string
	ID              string
	Name            string
	Photo           string
	Language        string
	PlannerFeature  string
	ExpensesFeature string
	ViewOrdering    string
	CreatedAt       string
	UpdatedAt       string
}

// CoreHousehold is the schema definition for core.household
var CoreHousehold = CoreHouseholdTable{
	Table:           "core.household",
	ID:              "id",
	Name:            "name",
	Photo:           "photo",
	Language:        "language",
	PlannerFeature:  "plannerfeature",
	ExpensesFeature: "expensesfeature",
	ViewOrdering:    "viewordering",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

// Columns returns all standard column names
func (t CoreHouseholdTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Photo, t.Language, t.PlannerFeature, t.ExpensesFeature,
		t.ViewOrdering, t.CreatedAt, t.UpdatedAt,
	}
}

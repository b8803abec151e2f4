package schema

// CoreCategoryTable represents the 'core.category' table
type CoreCategoryTable struct {
	Table       string
	ID          string
	Name        string
	DefaultFlag string
	DefaultKey  string
	Ordering    string
	HouseholdID string
}

// CoreCategory is the schema definition for core.category
var CoreCategory = CoreCategoryTable{
	Table:       "core.category",
	ID:          "id",
	Name:        "name",
	DefaultFlag: "defaultflag",
	DefaultKey:  "defaultkey",
	Ordering:    "ordering",
	HouseholdID: "householdid",
}

func (t CoreCategoryTable) Columns() []string {
	return []string{t.ID, t.Name, t.DefaultFlag, t.DefaultKey, t.Ordering, t.HouseholdID}
}

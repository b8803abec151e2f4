package schema

// CoreMemberTable represents the 'core.householdmember' table
type CoreMemberTable struct {
	Table       string
	HouseholdID string
	UserID      string
	Owner       string
	Admin       string
	CreatedAt   string
}

// CoreMember is the schema definition for core.householdmember
var CoreMember = CoreMemberTable{
	Table:       "core.householdmember",
	HouseholdID: "householdid",
	UserID:      "userid",
	Owner:       "owner",
	Admin:       "admin",
	CreatedAt:   "createdat",
}

func (t CoreMemberTable) Columns() []string {
	return []string{t.HouseholdID, t.UserID, t.Owner, t.Admin, t.CreatedAt}
}

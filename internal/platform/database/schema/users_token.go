package schema

// UserTokenTable represents the 'users.token' table
type UserTokenTable struct {
	Table          string
	ID             string
	JTI            string
	Type           string
	Name           string
	UserID         string
	RefreshTokenID string
	Used           string
	CreatedAt      string
	LastUsedAt     string
}

// UserToken is the schema definition for users.token
var UserToken = UserTokenTable{
	Table:          "users.token",
	ID:             "id",
	JTI:            "jti",
	Type:           "type",
	Name:           "name",
	UserID:         "userid",
	RefreshTokenID: "refreshtokenid",
	Used:           "used",
	CreatedAt:      "createdat",
	LastUsedAt:     "lastusedat",
}

// Columns returns all standard column names
func (t UserTokenTable) Columns() []string {
	return []string{
		t.ID, t.JTI, t.Type, t.Name, t.UserID, t.RefreshTokenID, t.Used, t.CreatedAt, t.LastUsedAt,
	}
}

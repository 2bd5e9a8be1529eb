package domain

// Keys of the flat per-device session layout.
const (
	SessionKeyEmail         = "user_email"
	SessionKeyUserID        = "user_id"
	SessionKeyRole          = "user_role"
	SessionKeyFullName      = "user_full_name"
	SessionKeyUserObject    = "user_object"
	SessionKeyLoggedIn      = "is_logged_in"
	SessionKeySchemaVersion = "schema_version"
)

// SessionSchemaVersion is written with every session. Sessions carrying any
// other version are treated as absent.
const SessionSchemaVersion = "1"

// Session is the device-bound record of the active login.
type Session struct {
	Email    string
	UserID   string
	Role     Role
	FullName string
	User     *User
	LoggedIn bool
}

package core

// Logger is any structured logger the app reports to.
// args may hold errors, maps of extra data and one Identity to attach to the report.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Identity is the caller as asserted by the external identity provider.
type Identity struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

const (
	RoleAdmin             = "admin"
	RoleAttendanceService = "service:attendance"
)

func (id Identity) HasRole(roles ...string) bool {
	for _, have := range id.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

func (id Identity) IsAdmin() bool {
	return id.HasRole(RoleAdmin)
}

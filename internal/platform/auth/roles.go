package auth

const (
	RoleAdmin   = "admin"
	RoleUser    = "user"
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// RoleInfo is an entry of the static role list.
type RoleInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

var roles = []RoleInfo{
	{ID: 1, Name: RoleAdmin},
	{ID: 2, Name: RoleUser},
	{ID: 3, Name: RolePatient},
	{ID: 4, Name: RoleDoctor},
}

// Roles returns a copy of the role list.
func Roles() []RoleInfo {
	out := make([]RoleInfo, len(roles))
	copy(out, roles)
	return out
}

func RoleNames() []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	return names
}

func ValidRole(name string) bool {
	for _, r := range roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

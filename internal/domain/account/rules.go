package account

import (
	"github.com/clinic/clinic/internal/platform/auth"
	v "github.com/clinic/clinic/internal/platform/validation"
)

const userTable = "users"

// bcrypt ignores everything past 72 bytes.
const maxPasswordLen = 72

var registerRules = v.Rules{
	v.F("name", v.Required(), v.String(), v.Max(255)),
	v.F("email", v.Required(), v.Email(), v.Max(255), v.Unique(userTable, "email")),
	v.F("password", v.Required(), v.String(), v.Min(8), v.Max(maxPasswordLen)),
}

var loginRules = v.Rules{
	v.F("email", v.Required(), v.Email()),
	v.F("password", v.Required(), v.String(), v.Min(8)),
}

var patchUserRules = v.Rules{
	v.F("name", v.String(), v.Max(255)),
	v.F("role", v.String(), v.In(auth.RoleNames()...)),
}

package clinic

import v "github.com/clinic/clinic/internal/platform/validation"

const (
	patientTable = "patient"
	doctorTable  = "doctor"
)

// maxAge also keeps ages inside the INTEGER column.
const maxAge = 150

var createPatientRules = v.Rules{
	v.F("name", v.Required(), v.String(), v.Max(255)),
	v.F("email", v.Required(), v.Email(), v.Max(255), v.Unique(patientTable, "email")),
	v.F("phone", v.Required(), v.Max(255)),
	v.F("address", v.Required(), v.Max(255)),
	v.F("description", v.Nullable(), v.String()),
	v.F("age", v.Nullable(), v.Int(), v.Min(0), v.Max(maxAge)),
	v.F("doctor_id", v.Nullable(), v.UUID(), v.Exists(doctorTable, "id")),
}

var (
	updatePatientRules        = createPatientRules.With("description", v.Required(), v.String())
	updatePatientPartialRules = updatePatientRules.Partial()
)

var createDoctorRules = v.Rules{
	v.F("name", v.Required(), v.String(), v.Max(255)),
	v.F("last_name", v.Required(), v.String(), v.Max(255)),
	v.F("phone", v.Required(), v.Max(255)),
	v.F("email", v.Required(), v.Email(), v.Max(255), v.Unique(doctorTable, "email")),
	v.F("specialization", v.Required(), v.String(), v.Max(255)),
	v.F("sub_specialization", v.Required(), v.String(), v.Max(255)),
}

var (
	updateDoctorRules        = createDoctorRules
	updateDoctorPartialRules = createDoctorRules.Partial()
)

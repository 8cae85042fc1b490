package clinic

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/validation"
)

type Patient struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	Description *string    `json:"description"`
	Age         *int       `json:"age"`
	DoctorID    *uuid.UUID `json:"doctor_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// apply copies the fields present in in. Absent fields are left alone and
// explicit nulls clear nullable fields.
func (p *Patient) apply(in validation.Payload) {
	if in.Has("name") {
		p.Name = in.String("name")
	}
	if in.Has("email") {
		p.Email = in.String("email")
	}
	if in.Has("phone") {
		p.Phone = in.String("phone")
	}
	if in.Has("address") {
		p.Address = in.String("address")
	}
	if in.Has("description") {
		p.Description = in.OptString("description")
	}
	if in.Has("age") {
		p.Age = in.OptInt("age")
	}
	if in.Has("doctor_id") {
		p.DoctorID = optUUID(in, "doctor_id")
	}
}

// replace is apply for a full update: optional fields missing from in are
// cleared.
func (p *Patient) replace(in validation.Payload) {
	p.Description = nil
	p.Age = nil
	p.DoctorID = nil
	p.apply(in)
}

type Doctor struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	LastName          string    `json:"last_name"`
	Phone             string    `json:"phone"`
	Email             string    `json:"email"`
	Specialization    string    `json:"specialization"`
	SubSpecialization string    `json:"sub_specialization"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (d *Doctor) apply(in validation.Payload) {
	if in.Has("name") {
		d.Name = in.String("name")
	}
	if in.Has("last_name") {
		d.LastName = in.String("last_name")
	}
	if in.Has("phone") {
		d.Phone = in.String("phone")
	}
	if in.Has("email") {
		d.Email = in.String("email")
	}
	if in.Has("specialization") {
		d.Specialization = in.String("specialization")
	}
	if in.Has("sub_specialization") {
		d.SubSpecialization = in.String("sub_specialization")
	}
}

// optUUID parses a validated uuid field. Nil for null.
func optUUID(in validation.Payload, name string) *uuid.UUID {
	s := in.OptString(name)
	if s == nil {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

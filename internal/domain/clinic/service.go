package clinic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/validation"
	"github.com/clinic/clinic/pkg/pagination"
)

// Raw is a decoded JSON object body, member by member.
type Raw = map[string]json.RawMessage

type Service struct {
	patients  PatientRepository
	doctors   DoctorRepository
	validator *validation.Validator
}

func NewService(patients PatientRepository, doctors DoctorRepository, v *validation.Validator) *Service {
	return &Service{patients: patients, doctors: doctors, validator: v}
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, raw Raw) (*Patient, error) {
	in, err := s.validator.Validate(ctx, createPatientRules, raw, validation.Options{})
	if err != nil {
		return nil, err
	}
	p := &Patient{}
	p.apply(in)
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, emailTaken(err)
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

// UpdatePatient replaces every field of the patient. Optional fields missing
// from raw are cleared.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, raw Raw) (*Patient, error) {
	return s.updatePatient(ctx, id, raw, updatePatientRules, (*Patient).replace)
}

// PatchPatient changes only the fields present in raw.
func (s *Service) PatchPatient(ctx context.Context, id uuid.UUID, raw Raw) (*Patient, error) {
	return s.updatePatient(ctx, id, raw, updatePatientPartialRules, (*Patient).apply)
}

func (s *Service) updatePatient(ctx context.Context, id uuid.UUID, raw Raw, rules validation.Rules, merge func(*Patient, validation.Payload)) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in, err := s.validator.Validate(ctx, rules, raw, validation.Options{
		IgnoreID: p.ID.String(),
		Current:  map[string]interface{}{"email": p.Email},
	})
	if err != nil {
		return nil, err
	}
	merge(p, in)
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, emailTaken(err)
	}
	return p, nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, pg pagination.Params) ([]*Patient, int, error) {
	return s.patients.List(ctx, pg.Query, pg.Limit(), pg.Offset())
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, raw Raw) (*Doctor, error) {
	in, err := s.validator.Validate(ctx, createDoctorRules, raw, validation.Options{})
	if err != nil {
		return nil, err
	}
	d := &Doctor{}
	d.apply(in)
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, emailTaken(err)
	}
	return d, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, raw Raw) (*Doctor, error) {
	return s.updateDoctor(ctx, id, raw, updateDoctorRules)
}

func (s *Service) PatchDoctor(ctx context.Context, id uuid.UUID, raw Raw) (*Doctor, error) {
	return s.updateDoctor(ctx, id, raw, updateDoctorPartialRules)
}

// updateDoctor serves both update kinds: a doctor has no optional fields,
// so a full update is a partial one with every field required.
func (s *Service) updateDoctor(ctx context.Context, id uuid.UUID, raw Raw, rules validation.Rules) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in, err := s.validator.Validate(ctx, rules, raw, validation.Options{
		IgnoreID: d.ID.String(),
		Current:  map[string]interface{}{"email": d.Email},
	})
	if err != nil {
		return nil, err
	}
	d.apply(in)
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, emailTaken(err)
	}
	return d, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return s.doctors.Delete(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, pg pagination.Params) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, pg.Query, pg.Limit(), pg.Offset())
}

// emailTaken reports a lost uniqueness race as a validation error on email.
func emailTaken(err error) error {
	if _, ok := db.UniqueViolation(err); ok {
		return validation.Taken("email")
	}
	return fmt.Errorf("store: %w", err)
}

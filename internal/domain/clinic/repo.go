package clinic

import (
	"context"

	"github.com/google/uuid"
)

// PatientRepository persists patients. GetByID, Update and Delete return
// db.ErrNotFound for unknown ids.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns one page of patients whose name contains q (all when q
	// is empty) and the total number of matches.
	List(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q string, limit, offset int) ([]*Doctor, int, error)
}

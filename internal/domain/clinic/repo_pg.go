package clinic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinic/clinic/internal/platform/db"
)

// -- Patient Repository --

type patientRepoPG struct {
	q db.Querier
}

func NewPatientRepo(q db.Querier) PatientRepository {
	return &patientRepoPG{q: q}
}

const patientCols = `id, name, email, phone, address, description, age, doctor_id, created_at, updated_at`

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	err := db.Conn(ctx, r.q).QueryRow(ctx, `
		INSERT INTO patient (id, name, email, phone, address, description, age, doctor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Email, p.Phone, p.Address, p.Description, p.Age, p.DoctorID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("patient create: %w", err)
	}
	return nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(db.Conn(ctx, r.q).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("patient get: %w", db.NotFound(err))
	}
	return p, nil
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	err := db.Conn(ctx, r.q).QueryRow(ctx, `
		UPDATE patient SET
			name = $2, email = $3, phone = $4, address = $5,
			description = $6, age = $7, doctor_id = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.Name, p.Email, p.Phone, p.Address, p.Description, p.Age, p.DoctorID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("patient update: %w", db.NotFound(err))
	}
	return nil
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	if err := db.AffectedOne(db.Conn(ctx, r.q).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)); err != nil {
		return fmt.Errorf("patient delete: %w", err)
	}
	return nil
}

func (r *patientRepoPG) List(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error) {
	where, args := nameFilter(q)

	var total int
	if err := db.Conn(ctx, r.q).QueryRow(ctx, `SELECT COUNT(*) FROM patient`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("patient count: %w", err)
	}

	rows, err := db.Conn(ctx, r.q).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM patient%s ORDER BY created_at, id LIMIT $%d OFFSET $%d`,
			patientCols, where, len(args)+1, len(args)+2),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("patient list: %w", err)
	}
	defer rows.Close()

	patients := make([]*Patient, 0, limit)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("patient scan: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Address,
		&p.Description, &p.Age, &p.DoctorID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// -- Doctor Repository --

type doctorRepoPG struct {
	q db.Querier
}

func NewDoctorRepo(q db.Querier) DoctorRepository {
	return &doctorRepoPG{q: q}
}

const doctorCols = `id, name, last_name, phone, email, specialization, sub_specialization, created_at, updated_at`

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	err := db.Conn(ctx, r.q).QueryRow(ctx, `
		INSERT INTO doctor (id, name, last_name, phone, email, specialization, sub_specialization)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		d.ID, d.Name, d.LastName, d.Phone, d.Email, d.Specialization, d.SubSpecialization,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("doctor create: %w", err)
	}
	return nil
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(db.Conn(ctx, r.q).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("doctor get: %w", db.NotFound(err))
	}
	return d, nil
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	err := db.Conn(ctx, r.q).QueryRow(ctx, `
		UPDATE doctor SET
			name = $2, last_name = $3, phone = $4, email = $5,
			specialization = $6, sub_specialization = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		d.ID, d.Name, d.LastName, d.Phone, d.Email, d.Specialization, d.SubSpecialization,
	).Scan(&d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("doctor update: %w", db.NotFound(err))
	}
	return nil
}

func (r *doctorRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	if err := db.AffectedOne(db.Conn(ctx, r.q).Exec(ctx, `DELETE FROM doctor WHERE id = $1`, id)); err != nil {
		return fmt.Errorf("doctor delete: %w", err)
	}
	return nil
}

func (r *doctorRepoPG) List(ctx context.Context, q string, limit, offset int) ([]*Doctor, int, error) {
	where, args := nameFilter(q)

	var total int
	if err := db.Conn(ctx, r.q).QueryRow(ctx, `SELECT COUNT(*) FROM doctor`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("doctor count: %w", err)
	}

	rows, err := db.Conn(ctx, r.q).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM doctor%s ORDER BY created_at, id LIMIT $%d OFFSET $%d`,
			doctorCols, where, len(args)+1, len(args)+2),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("doctor list: %w", err)
	}
	defer rows.Close()

	doctors := make([]*Doctor, 0, limit)
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("doctor scan: %w", err)
		}
		doctors = append(doctors, d)
	}
	return doctors, total, rows.Err()
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.LastName, &d.Phone, &d.Email,
		&d.Specialization, &d.SubSpecialization, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// nameFilter builds the case-insensitive substring filter on name.
func nameFilter(q string) (string, []interface{}) {
	if q == "" {
		return "", nil
	}
	return ` WHERE name ILIKE $1`, []interface{}{db.ContainsPattern(q)}
}

package care

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgPatientRepo struct {
	pool *pgxpool.Pool
}

// NewPatientRepoPG returns a roster backed by the patient_registration table.
func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &pgPatientRepo{pool: pool}
}

func (r *pgPatientRepo) Register(ctx context.Context, reg *Registration) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO patient_registration (patient_id, name)
		VALUES ($1, $2)
		RETURNING registered_at`,
		reg.PatientID, reg.Name,
	).Scan(&reg.RegisteredAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is unique_violation on the patient_id primary key.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("register patient: %w", err)
	}
	return nil
}

func (r *pgPatientRepo) IsRegistered(ctx context.Context, patient uuid.UUID) (bool, error) {
	var registered bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patient_registration WHERE patient_id = $1)`,
		patient).Scan(&registered)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return registered, nil
}

func (r *pgPatientRepo) List(ctx context.Context, limit, offset int) ([]*Registration, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM patient_registration`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT patient_id, name, registered_at FROM patient_registration
		ORDER BY registered_at, patient_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var out []*Registration
	for rows.Next() {
		var reg Registration
		if err := rows.Scan(&reg.PatientID, &reg.Name, &reg.RegisteredAt); err != nil {
			return nil, 0, fmt.Errorf("scan patient: %w", err)
		}
		out = append(out, &reg)
	}
	return out, total, rows.Err()
}

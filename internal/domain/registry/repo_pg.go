package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepo struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &pgRepo{pool: pool} }

const clinicianCols = `id, name, specialization, profile_ref, verified, created_at, updated_at`

func scanClinician(row pgx.Row) (*Clinician, error) {
	var c Clinician
	err := row.Scan(&c.ID, &c.Name, &c.Specialization, &c.ProfileRef, &c.Verified, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *pgRepo) Upsert(ctx context.Context, c *Clinician) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO clinician (id, name, specialization, profile_ref, verified)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			specialization = EXCLUDED.specialization,
			profile_ref = EXCLUDED.profile_ref,
			verified = EXCLUDED.verified,
			updated_at = NOW()
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Specialization, c.ProfileRef, c.Verified).
		Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *pgRepo) GetByID(ctx context.Context, id uuid.UUID) (*Clinician, error) {
	c, err := scanClinician(r.pool.QueryRow(ctx, `SELECT `+clinicianCols+` FROM clinician WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, err
}

func (r *pgRepo) ListVerified(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM clinician WHERE verified`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *pgRepo) List(ctx context.Context, limit, offset int) ([]*Clinician, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clinician`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+clinicianCols+` FROM clinician ORDER BY created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Clinician
	for rows.Next() {
		c, err := scanClinician(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

package consent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepo struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &pgRepo{pool: pool} }

const grantCols = `id, patient_id, clinician_id, active, payload_ref, created_at, revoked_at`

func scanGrant(row pgx.Row) (*Grant, error) {
	var g Grant
	err := row.Scan(&g.ID, &g.PatientID, &g.ClinicianID, &g.Active, &g.PayloadRef, &g.CreatedAt, &g.RevokedAt)
	return &g, err
}

func (r *pgRepo) Create(ctx context.Context, g *Grant) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO consent_grant (patient_id, clinician_id, active, payload_ref)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at`,
		g.PatientID, g.ClinicianID, g.Active, g.PayloadRef).
		Scan(&g.ID, &g.CreatedAt)
}

func (r *pgRepo) GetByID(ctx context.Context, id uint64) (*Grant, error) {
	g, err := scanGrant(r.pool.QueryRow(ctx, `SELECT `+grantCols+` FROM consent_grant WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return g, err
}

func (r *pgRepo) SetRevoked(ctx context.Context, id uint64, at time.Time) error {
	// Guarding on active makes the true->false flip atomic; of two racing
	// revokes only one update matches.
	tag, err := r.pool.Exec(ctx,
		`UPDATE consent_grant SET active = FALSE, revoked_at = $2 WHERE id = $1 AND active`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM consent_grant WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return fmt.Errorf("%w: %d", ErrAlreadyRevoked, id)
	}
	return nil
}

func (r *pgRepo) HasActive(ctx context.Context, patient, clinician uuid.UUID) (bool, error) {
	var has bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM consent_grant
			WHERE patient_id = $1 AND clinician_id = $2 AND active
		)`, patient, clinician).Scan(&has)
	return has, err
}

func (r *pgRepo) ListByPatient(ctx context.Context, patient uuid.UUID, limit, offset int) ([]*Grant, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM consent_grant WHERE patient_id = $1`, patient).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+grantCols+` FROM consent_grant
		WHERE patient_id = $1 ORDER BY id LIMIT $2 OFFSET $3`, patient, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Grant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, g)
	}
	return out, total, rows.Err()
}

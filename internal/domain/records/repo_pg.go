package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordCols = `id, patient_id, author_id, content, content_ref, encrypted, created_at`

type pgRepo struct {
	pool *pgxpool.Pool
}

// NewRepoPG returns a record store backed by the medical_record table.
// The table grants no UPDATE or DELETE; append-only is enforced at the
// schema level as well.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

func (r *pgRepo) Append(ctx context.Context, rec *Record) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO medical_record (patient_id, author_id, content, content_ref, encrypted)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		rec.PatientID, rec.AuthorID, rec.Content, rec.ContentRef, rec.Encrypted,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

func (r *pgRepo) GetByID(ctx context.Context, id uint64) (*Record, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+recordCols+` FROM medical_record WHERE id = $1`, id)
	return scanRecord(row)
}

func (r *pgRepo) ListByPatient(ctx context.Context, patient uuid.UUID, limit, offset int) ([]*Record, int, error) {
	total, err := r.CountByPatient(ctx, patient)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+recordCols+` FROM medical_record
		WHERE patient_id = $1 ORDER BY id LIMIT $2 OFFSET $3`,
		patient, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

func (r *pgRepo) CountByPatient(ctx context.Context, patient uuid.UUID) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_record WHERE patient_id = $1`, patient).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return total, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.AuthorID,
		&rec.Content, &rec.ContentRef, &rec.Encrypted, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}
	return &rec, nil
}

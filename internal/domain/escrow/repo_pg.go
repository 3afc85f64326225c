package escrow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentCols = `id, patient_id, clinician_id, amount, status, created_at, updated_at`

type pgRepo struct {
	pool *pgxpool.Pool
}

// NewRepoPG returns an appointment store backed by the appointment,
// escrow_transfer, party_balance and escrow_pool tables.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

func (r *pgRepo) Create(ctx context.Context, appt *Appointment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin booking: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO appointment (patient_id, clinician_id, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		appt.PatientID, appt.ClinicianID, appt.Amount, StatusPending,
	).Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	appt.Status = StatusPending

	if _, err := tx.Exec(ctx,
		`UPDATE escrow_pool SET balance = balance + $1 WHERE id = 1`, appt.Amount,
	); err != nil {
		return fmt.Errorf("credit escrow pool: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *pgRepo) GetByID(ctx context.Context, id uint64) (*Appointment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointment WHERE id = $1`, id)
	return scanAppointment(row)
}

func (r *pgRepo) NextID(ctx context.Context) (uint64, error) {
	var next uint64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(id) + 1, 0) FROM appointment`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next appointment id: %w", err)
	}
	return next, nil
}

func (r *pgRepo) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx,
		`SELECT `+appointmentCols+` FROM appointment ORDER BY id LIMIT $1 OFFSET $2`,
		`SELECT COUNT(*) FROM appointment`,
		[]any{limit, offset}, nil)
}

func (r *pgRepo) ListByParty(ctx context.Context, party uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx,
		`SELECT `+appointmentCols+` FROM appointment
		 WHERE patient_id = $1 OR clinician_id = $1 ORDER BY id LIMIT $2 OFFSET $3`,
		`SELECT COUNT(*) FROM appointment WHERE patient_id = $1 OR clinician_id = $1`,
		[]any{party, limit, offset}, []any{party})
}

func (r *pgRepo) list(ctx context.Context, query, countQuery string, args, countArgs []any) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, appt)
	}
	return out, total, rows.Err()
}

func (r *pgRepo) Transition(ctx context.Context, id uint64, from, to Status, transfer *Transfer) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE appointment SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return fmt.Errorf("transition appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var current Status
		err := tx.QueryRow(ctx, `SELECT status FROM appointment WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read appointment status: %w", err)
		}
		return fmt.Errorf("%w: appointment %d is %s, expected %s", ErrInvalidState, id, current, from)
	}

	if transfer != nil {
		// The primary key on appointment_id makes a second settlement of
		// the same appointment fail the insert, aborting the transaction.
		if _, err := tx.Exec(ctx, `
			INSERT INTO escrow_transfer (appointment_id, recipient, amount, kind)
			VALUES ($1, $2, $3, $4)`,
			transfer.AppointmentID, transfer.Recipient, transfer.Amount, transfer.Kind,
		); err != nil {
			return fmt.Errorf("record transfer: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE escrow_pool SET balance = balance - $1 WHERE id = 1`, transfer.Amount,
		); err != nil {
			return fmt.Errorf("debit escrow pool: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO party_balance (party, balance) VALUES ($1, $2)
			ON CONFLICT (party) DO UPDATE SET balance = party_balance.balance + EXCLUDED.balance`,
			transfer.Recipient, transfer.Amount,
		); err != nil {
			return fmt.Errorf("credit recipient: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (r *pgRepo) EscrowBalance(ctx context.Context) (uint64, error) {
	var balance uint64
	err := r.pool.QueryRow(ctx, `SELECT balance FROM escrow_pool WHERE id = 1`).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("escrow balance: %w", err)
	}
	return balance, nil
}

func (r *pgRepo) BalanceOf(ctx context.Context, party uuid.UUID) (uint64, error) {
	var balance uint64
	err := r.pool.QueryRow(ctx,
		`SELECT balance FROM party_balance WHERE party = $1`, party).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("party balance: %w", err)
	}
	return balance, nil
}

func (r *pgRepo) Transfers(ctx context.Context, appointmentID uint64) ([]*Transfer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT appointment_id, recipient, amount, kind, created_at
		FROM escrow_transfer WHERE appointment_id = $1`, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var out []*Transfer
	for rows.Next() {
		var t Transfer
		if err := rows.Scan(&t.AppointmentID, &t.Recipient, &t.Amount, &t.Kind, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	err := row.Scan(&appt.ID, &appt.PatientID, &appt.ClinicianID,
		&appt.Amount, &appt.Status, &appt.CreatedAt, &appt.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan appointment: %w", err)
	}
	return &appt, nil
}

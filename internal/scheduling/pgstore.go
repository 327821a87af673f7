package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore keeps the appointment collection in Postgres. Selected with
// STORE_BACKEND=postgres; the schema is applied by cmd/seed. Identifier
// assignment stays count-based, computed inside the insert transaction.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const apptColumns = `id, rut_paciente, nombre_paciente, doctor_id, nombre_doctor,
	fecha, hora, tipo_consulta, estado, fecha_creacion`

func scanAppointment(row pgx.Row) (Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID,
		&a.PatientRUT,
		&a.PatientName,
		&a.DoctorID,
		&a.DoctorName,
		&a.Date,
		&a.Hour,
		&a.VisitType,
		&a.Status,
		&a.CreatedAt,
	)
	return a, err
}

func (s *PgStore) Append(ctx context.Context, appt Appointment) (Appointment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Appointment{}, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM citas`).Scan(&count); err != nil {
		return Appointment{}, fmt.Errorf("count citas: %w", err)
	}
	appt.ID = count + 1

	_, err = tx.Exec(ctx, `
		INSERT INTO citas (`+apptColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		appt.ID,
		appt.PatientRUT,
		appt.PatientName,
		appt.DoctorID,
		appt.DoctorName,
		appt.Date,
		appt.Hour,
		appt.VisitType,
		appt.Status,
		appt.CreatedAt,
	)
	if err != nil {
		return Appointment{}, fmt.Errorf("insert cita: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Appointment{}, fmt.Errorf("commit append: %w", err)
	}
	return appt, nil
}

func (s *PgStore) List(ctx context.Context) ([]Appointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM citas
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (s *PgStore) ListByPatient(ctx context.Context, rut string) ([]Appointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM citas
		WHERE rut_paciente = $1
		ORDER BY id
	`, rut)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	out := make([]Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PgStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM citas`).Scan(&count)
	return count, err
}

func (s *PgStore) SetStatus(ctx context.Context, id int, st Status) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE citas SET estado = $2 WHERE id = $1
	`, id, st)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (s *PgStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM citas`)
	return err
}

func (s *PgStore) HasPatientSlot(ctx context.Context, rut, date, hour string) (bool, error) {
	return s.hasSlot(ctx, `
		SELECT 1 FROM citas
		WHERE estado = $1 AND rut_paciente = $2 AND fecha = $3 AND hora = $4
		LIMIT 1
	`, StatusScheduled, rut, date, hour)
}

func (s *PgStore) HasDoctorSlot(ctx context.Context, doctorID int, date, hour string) (bool, error) {
	return s.hasSlot(ctx, `
		SELECT 1 FROM citas
		WHERE estado = $1 AND doctor_id = $2 AND fecha = $3 AND hora = $4
		LIMIT 1
	`, StatusScheduled, doctorID, date, hour)
}

func (s *PgStore) hasSlot(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

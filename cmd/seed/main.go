package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/visionclara/clinic-scheduling/internal/db"
)

// Applies the appointment schema used by the Postgres store. The
// patient/doctor directory lives in-process and needs no seeding step.

const schema = `
CREATE TABLE IF NOT EXISTS citas (
	id              integer PRIMARY KEY,
	rut_paciente    text NOT NULL,
	nombre_paciente text NOT NULL,
	doctor_id       integer NOT NULL,
	nombre_doctor   text NOT NULL,
	fecha           text NOT NULL,
	hora            text NOT NULL,
	tipo_consulta   text NOT NULL,
	estado          text NOT NULL,
	fecha_creacion  timestamptz NOT NULL
);

CREATE INDEX IF NOT EXISTS citas_paciente_slot_idx ON citas (rut_paciente, fecha, hora) WHERE estado = 'Agendada';
CREATE INDEX IF NOT EXISTS citas_doctor_slot_idx ON citas (doctor_id, fecha, hora) WHERE estado = 'Agendada';
`

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	logger.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		logger.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		logger.Fatal().Err(err).Msg("apply schema")
	}

	logger.Info().Msg("seed complete")
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/visionclara/clinic-scheduling/internal/directory"
	"github.com/visionclara/clinic-scheduling/internal/scheduling"
)

type RouterConfig struct {
	Service   *scheduling.Service
	Directory *directory.Directory
	PgPool    *pgxpool.Pool // nil with the memory store
	Redis     *redis.Client // nil when no locker is configured
	Logger    zerolog.Logger
	Env       string
	Version   string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Same routes the original clinic demo exposed.
	r.Route("/api", func(r chi.Router) {
		r.Get("/paciente/{rut}", getPatientHandler(cfg.Directory))
		r.Get("/doctores", listDoctorsHandler(cfg.Directory))
		r.Get("/citas", listAppointmentsHandler(cfg.Service))
		r.Get("/citas/{rut}", listPatientAppointmentsHandler(cfg.Service))
		r.Post("/agendar", bookAppointmentHandler(cfg.Service))
		r.Post("/cancelar/{id}", cancelAppointmentHandler(cfg.Service))
		r.Post("/limpiar", resetAppointmentsHandler(cfg.Service))
		r.Get("/estado", statusHandler(cfg.Service))
	})

	return r
}

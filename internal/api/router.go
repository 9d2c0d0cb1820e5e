package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hackgods/hospital-bed-scheduling/internal/appointment"
)

type RouterConfig struct {
	Service        *appointment.Service
	Logger         *zap.Logger
	Checks         map[string]CheckFunc
	AllowedOrigins []string
	Env            string
	Version        string
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	health := NewHealthHandler(cfg.Checks, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/api", func(r chi.Router) {
		r.Get("/doctors/{hospital}", listDoctorsHandler())
		r.Get("/time-slots", listTimeSlotsHandler())
		r.Get("/beds/{hospital}", listBedsHandler(cfg.Service, log))

		r.Post("/appointment", createAppointmentHandler(cfg.Service, log))
		r.Get("/appointment/{id}", getAppointmentHandler(cfg.Service, log))
		r.Put("/appointment/extend/{id}", extendAppointmentHandler(cfg.Service, log))
		r.Put("/appointment/discharge/{id}", dischargeAppointmentHandler(cfg.Service, log))
		r.Get("/appointments", listAppointmentsHandler(cfg.Service, log))
	})

	return r
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/Airpyk-98/Python-Image-Gen/internal/config"
	httpmiddleware "github.com/Airpyk-98/Python-Image-Gen/internal/http/middleware"
	"github.com/Airpyk-98/Python-Image-Gen/internal/images"
	"github.com/Airpyk-98/Python-Image-Gen/internal/metrics"
)

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, handler *images.Handler, collector *metrics.Collector) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(contextLogger)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	if len(cfg.AllowOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.AllowOrigins))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if collector != nil {
		r.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	r.Group(func(r chi.Router) {
		r.Use(httpmiddleware.IPRateLimit(limiter))
		handler.RegisterRoutes(r)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "rota inexistente")
	})

	return r
}

// contextLogger anexa o logger global ao contexto da requisição para os
// handlers usarem log.Ctx.
func contextLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := log.Logger.WithContext(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

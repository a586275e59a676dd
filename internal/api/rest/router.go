package rest

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"mip-notes/internal/api/http/middleware"
	"mip-notes/internal/config"
	"mip-notes/internal/logger"
)

// RouterConfig зависимости и настройки HTTP роутера
type RouterConfig struct {
	APIPrefix string
	Gateway   *config.ConfigGateway
	Logger    *logger.Logger
	// Registry если nil, метрики не собираются и /metrics не регистрируется
	Registry *prometheus.Registry
}

// NewRouter собирает chi роутер с маршрутами API и middleware.
// Порядок middleware (внешний первым): CORS → RequestID → Logging → Metrics → RateLimit → Recoverer.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	gw := cfg.Gateway
	if gw == nil {
		gw = &config.ConfigGateway{CORSAllowedOrigins: "*"}
	}

	r := chi.NewRouter()
	r.Use(setupCORS(gw).Handler)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	if cfg.Registry != nil {
		r.Use(middleware.NewMetrics(cfg.Registry).Handler)
	}
	r.Use(middleware.RateLimit(cfg.Logger, gw.RateLimitRPS, gw.RateLimitBurst))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", h.Health)
	if cfg.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	routes := func(r chi.Router) {
		r.Get("/list", h.ListNotes)
		r.Post("/create", h.CreateNote)
		r.Put("/update/{id}", h.UpdateNote)
		r.Delete("/delete/{id}", h.DeleteNote)
	}

	prefix := strings.TrimRight(cfg.APIPrefix, "/")
	if prefix == "" {
		routes(r)
	} else {
		r.Route(prefix, routes)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// setupCORS настраивает CORS middleware используя конфигурацию
func setupCORS(cfg *config.ConfigGateway) *cors.Cors {
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	maxAge := cfg.CORSMaxAge
	if maxAge == 0 {
		maxAge = 86400
	}

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           maxAge,
	})
}

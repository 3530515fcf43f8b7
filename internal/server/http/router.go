package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/secure"

	"github.com/1anshu-stack/backend/internal/logging"
	"github.com/1anshu-stack/backend/internal/server/health"
)

type RouterConfig struct {
	Handler     *Handler
	Health      *health.Checker
	Prefix      string
	CORSOrigin  string
	RateLimit   func(http.Handler) http.Handler
	Logger      logging.Logger
	Development bool
}

// SecureOptions returns the security headers applied to every response.
func SecureOptions(isDevelopment bool) secure.Options {
	return secure.Options{
		IsDevelopment:         isDevelopment,
		ContentTypeNosniff:    true,
		FrameDeny:             true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
}

func corsOptions(origin string) cors.Options {
	origins := []string{"*"}
	if origin != "" && origin != "*" {
		origins = strings.Split(origin, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}
	return cors.Options{
		AllowedOrigins: origins,
		// Browsers refuse credentialed requests answered with a wildcard,
		// so "*" is reflected back as the caller's origin.
		AllowOriginFunc: func(r *http.Request, o string) bool {
			if origins[0] == "*" {
				return true
			}
			for _, allowed := range origins {
				if allowed == o {
					return true
				}
			}
			return false
		},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handler
	rateLimit := cfg.RateLimit
	if rateLimit == nil {
		rateLimit = noopMiddleware
	}

	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Logger))
	r.Use(chimid.Recoverer)
	r.Use(PrometheusMiddleware)
	r.Use(secure.New(SecureOptions(cfg.Development)).Handler)
	r.Use(cors.Handler(corsOptions(cfg.CORSOrigin)))
	r.Use(chimid.Compress(5))

	if cfg.Health != nil {
		r.Get("/healthz", HealthHandler(cfg.Health))
	}
	r.Handle("/metrics", promhttp.Handler())

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "/"
	}
	r.Route(prefix, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimit)
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh-token", h.RefreshToken)
		})

		r.With(h.OptionalIdentity).Get("/channel/{username}", h.ChannelProfile)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireIdentity)
			r.Post("/logout", h.Logout)
			r.Post("/change-password", h.ChangePassword)
			r.Get("/me", h.Me)
			r.Patch("/account", h.UpdateAccount)
			r.Patch("/avatar", h.UpdateAvatar)
			r.Patch("/cover-image", h.UpdateCoverImage)
			r.Get("/watch-history", h.WatchHistory)
		})
	})

	return r
}

func loggerMiddleware(log logging.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info(r.Context(), "request",
				"request_id", chimid.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}

package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/BorisDmv/snip-api/internal/metrics"
	appmiddleware "github.com/BorisDmv/snip-api/internal/middleware"
)

type RouterConfig struct {
	Accounts   *AccountsHandler
	Contents   *ContentsHandler
	Polls      *PollsHandler
	Moderation *ModerationHandler
	Scheduler  *SchedulerHandler

	Tokens         appmiddleware.TokenParser
	SchedulerToken string
	CorsOrigins    []string
	RequestTimeout time.Duration
	LoginLimiter   *appmiddleware.RateLimiter
	VoteLimiter    *appmiddleware.RateLimiter
	Metrics        *metrics.Metrics
	Health         Pinger
	Logger         *logrus.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(appmiddleware.RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)

	r.Get("/health", Health(cfg.Health))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	limit := func(rl *appmiddleware.RateLimiter) func(http.Handler) http.Handler {
		if rl == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return rl.Limit
	}

	r.Route("/api", func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
		}

		r.With(limit(cfg.LoginLimiter)).Post("/signup", cfg.Accounts.Signup)
		r.With(limit(cfg.LoginLimiter)).Post("/login", cfg.Accounts.Login)

		r.Route("/internal", func(r chi.Router) {
			r.Use(appmiddleware.StaticToken(cfg.SchedulerToken))
			r.Post("/publish-due", cfg.Scheduler.PublishDue)
		})

		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Identify(cfg.Tokens))

			r.Get("/contents", cfg.Contents.Feed)
			r.Get("/contents/{id}", cfg.Contents.Get)
			r.Get("/contents/{id}/tally", cfg.Polls.Tally)

			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireActor)

				r.Post("/contents", cfg.Contents.Create)
				r.Patch("/contents/{id}", cfg.Contents.Update)
				r.Delete("/contents/{id}", cfg.Contents.Delete)
				r.Post("/contents/{id}/publish", cfg.Contents.Publish)
				r.Get("/me/contents", cfg.Contents.Mine)

				r.With(limit(cfg.VoteLimiter)).Post("/contents/{id}/votes", cfg.Polls.Vote)

				r.Post("/contents/{id}/appeal", cfg.Moderation.SubmitAppeal)
				r.Get("/contents/{id}/appeal", cfg.Moderation.GetAppeal)
				r.Post("/contents/{id}/hide", cfg.Moderation.Hide)
				r.Post("/contents/{id}/restore", cfg.Moderation.Restore)
			})
		})
	})

	return r
}

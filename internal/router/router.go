package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/pyhumph/jriit-cms-sub001/internal/config"
	"github.com/pyhumph/jriit-cms-sub001/internal/handler"
	"github.com/pyhumph/jriit-cms-sub001/internal/middleware"
	"github.com/pyhumph/jriit-cms-sub001/internal/model"
)

type Handlers struct {
	RecycleBin *handler.RecycleBinHandler
	Public     *handler.PublicHandler
	Audit      *handler.AuditHandler
	Health     *handler.HealthHandler
	Docs       *handler.DocsHandler
	Events     http.Handler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, tracer trace.Tracer, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.MutationRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Tracing(tracer))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Check)
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/swagger", h.Docs.SwaggerUI)

	editors := authMiddleware.RequireRoles(model.RoleEditor, model.RoleAdmin)
	admins := authMiddleware.RequireRoles(model.RoleAdmin)

	r.Route("/api/v1", func(api chi.Router) {
		// Websocket connections are long lived and must not pass through
		// the request timeout.
		if h.Events != nil {
			api.With(authMiddleware.RequireAuth).Get("/ws", h.Events.ServeHTTP)
		}

		api.Group(func(timed chi.Router) {
			timed.Use(middleware.Timeout(cfg.RequestTimeout))

			timed.Get("/public/{item_type}", h.Public.List)

			timed.Route("/recycle-bin", func(bin chi.Router) {
				bin.Use(authMiddleware.RequireAuth)
				bin.Get("/", h.RecycleBin.List)
				bin.With(editors).Post("/{item_type}/{item_id}/restore", h.RecycleBin.Restore)
				bin.With(admins).Delete("/{item_type}/{item_id}", h.RecycleBin.PermanentDelete)
			})

			timed.With(authMiddleware.RequireAuth, editors).Delete("/content/{item_type}/{item_id}", h.RecycleBin.SoftDelete)
			timed.With(authMiddleware.RequireAuth, admins).Get("/audit", h.Audit.List)
		})
	})

	return r
}

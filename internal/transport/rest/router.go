package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/salesloop/crm-backend/internal/auth"
	"github.com/salesloop/crm-backend/internal/authz"
	"github.com/salesloop/crm-backend/internal/lead"
	"github.com/salesloop/crm-backend/internal/profile"
	"github.com/salesloop/crm-backend/internal/role"
	"github.com/salesloop/crm-backend/internal/transport/middleware"
	"github.com/salesloop/crm-backend/internal/transport/swagger"
	"github.com/salesloop/crm-backend/internal/user"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	roleHandler *role.Handler,
	profileHandler *profile.Handler,
	leadHandler *lead.Handler,
	decider authz.Decider,
	logger *slog.Logger,
) {
	cacheStats, _ := decider.(cacheStatsProvider)
	healthHandler := NewHealthHandler(db, cacheStats)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		if authHandler == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)
			pr.Use(middleware.TenantLogContext)

			if userHandler != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Get("/me", userHandler.GetCurrentUser)
					ur.Get("/", userHandler.ListUsers)
					ur.Get("/{id}", userHandler.GetUser)
					ur.Get("/{id}/subordinates", userHandler.GetSubordinates)
					ur.Patch("/{id}/manager", userHandler.ReassignManager)
				})
			}

			if leadHandler != nil {
				pr.Route("/leads", func(lr chi.Router) {
					lr.Post("/", leadHandler.CreateLead)
					lr.Get("/", leadHandler.ListLeads)
					lr.Get("/{leadID}", leadHandler.GetLead)
					lr.Patch("/{leadID}", leadHandler.UpdateLead)
					lr.Delete("/{leadID}", leadHandler.DeleteLead)
				})
			}

			// Setup area: reading the role and profile configuration requires
			// the view-setup grant; mutations are further gated per-service.
			pr.Group(func(sr chi.Router) {
				sr.Use(middleware.RequireSystemPermission(decider, authz.PermViewSetup))

				if roleHandler != nil {
					sr.Route("/roles", func(rr chi.Router) {
						rr.Post("/", roleHandler.CreateRole)
						rr.Get("/", roleHandler.ListRoles)
						rr.Get("/{roleID}", roleHandler.GetRole)
						rr.Patch("/{roleID}", roleHandler.UpdateRole)
						rr.Delete("/{roleID}", roleHandler.DeleteRole)
					})
				}

				if profileHandler != nil {
					sr.Route("/profiles", func(prr chi.Router) {
						prr.Post("/", profileHandler.CreateProfile)
						prr.Get("/", profileHandler.ListProfiles)
						prr.Get("/{profileID}", profileHandler.GetProfile)
						prr.Patch("/{profileID}", profileHandler.UpdateProfile)
						prr.Delete("/{profileID}", profileHandler.DeleteProfile)
					})
				}
			})
		})
	})
}

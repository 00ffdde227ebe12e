package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/hr-portal/api"
	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/internal/mockapi"
	"github.com/frahmantamala/hr-portal/internal/transport/middleware"
	"github.com/frahmantamala/hr-portal/internal/transport/swagger"
)

// NewRouter mounts the mock backend on a chi router.
func NewRouter(mock *mockapi.API, logger *slog.Logger) (http.Handler, error) {
	doc, err := middleware.LoadContract(api.OpenAPISpec)
	if err != nil {
		return nil, err
	}
	validate, err := middleware.ValidateRequests(doc)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	healthHandler := NewHealthHandler(mock.Store.Stats)
	h := mock.Handler

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(chiMiddleware.StripSlashes)
	router.Use(mock.Calls.Middleware)

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(api.OpenAPISpec)
	})
	router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))

	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)

	router.Group(func(r chi.Router) {
		r.Use(validate)

		r.Route("/users", func(ur chi.Router) {
			ur.Post("/register", h.Register)
			ur.Post("/login", h.Login)
			ur.Post("/logout", h.Logout)
			ur.Post("/refresh", h.Refresh)
		})

		r.Route("/employees", func(er chi.Router) {
			er.Use(middleware.BearerAuth(mock))

			er.Get("/", h.ListEmployees)

			er.Group(func(wr chi.Router) {
				wr.Use(middleware.RequireRoles(auth.EmployeeWriters()...))
				wr.Post("/", h.CreateEmployee)
				wr.Put("/{id}", h.UpdateEmployee)
			})

			er.Group(func(dr chi.Router) {
				dr.Use(middleware.RequireRoles(user.RoleAdmin))
				dr.Delete("/{id}", h.DeleteEmployee)
			})
		})
	})

	return router, nil
}

package rest

import (
	"adaudit/internal/catalog"
	"adaudit/internal/service"
	"adaudit/internal/transport/rest/handler"
	"adaudit/internal/transport/rest/middleware"
	"adaudit/internal/transport/ws"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Container holds all dependencies for the router
type Container struct {
	Catalog        *catalog.Catalog
	AuthService    *service.AuthService
	SessionService *service.SessionService
	AuditService   *service.AuditService
	WSHub          *ws.Hub
	CORSOrigins    string
	Log            logrus.FieldLogger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	catalogHandler := handler.NewCatalogHandler(c.Catalog)
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	auditHandler := handler.NewAuditHandler(c.AuditService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.Log)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSOrigins))
	r.Use(middleware.Logging(c.Log))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/catalog", catalogHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/catalog/{businessModel}", catalogHandler.Questions).Methods("GET", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/dashboard", wsHandler.DashboardWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Owner routes (require owner auth)
	ownerRoutes := v1.NewRoute().Subrouter()
	ownerRoutes.Use(authMW.RequireOwner)

	ownerRoutes.HandleFunc("/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/sessions/{id}", sessionHandler.Abandon).Methods("DELETE", "OPTIONS")
	ownerRoutes.HandleFunc("/sessions/{id}/answers/{questionId}", sessionHandler.Answer).Methods("PUT", "OPTIONS")
	ownerRoutes.HandleFunc("/sessions/{id}/back", sessionHandler.Back).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/sessions/{id}/preview", sessionHandler.Preview).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/sessions/{id}/submit", sessionHandler.Submit).Methods("POST", "OPTIONS")

	ownerRoutes.HandleFunc("/audits", auditHandler.List).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/audits/{id}", auditHandler.Get).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/audits/{id}", auditHandler.Delete).Methods("DELETE", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package routes

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"CAMPUSMARKET_BACK-END/internal/config"
	"CAMPUSMARKET_BACK-END/internal/handlers"
	"CAMPUSMARKET_BACK-END/internal/middleware"
	"CAMPUSMARKET_BACK-END/internal/store"
)

// SetupRoutes configures all application routes
func SetupRoutes(
	authHandler *handlers.AuthHandler,
	productHandler *handlers.ProductHandler,
	healthHandler *handlers.HealthHandler,
	users store.UserStore,
	cfg *config.Config,
) {
	// Health check routes
	http.HandleFunc("/healthz", healthHandler.HealthCheck)
	http.HandleFunc("/livez", healthHandler.LivenessCheck)
	http.HandleFunc("/readyz", healthHandler.ReadinessCheck)

	// Authentication routes
	http.HandleFunc("/api/auth/register", authHandler.Register)
	http.HandleFunc("/api/auth/login", authHandler.Login)
	http.HandleFunc("/api/auth/logout", middleware.RequireAuth(authHandler.Logout, users, &cfg.JWT))
	http.HandleFunc("/api/auth/me", middleware.RequireAuth(authHandler.Me, users, &cfg.JWT))

	// Product routes (mutations require auth inside the dispatcher)
	http.HandleFunc("/api/products", productHandler.Collection)
	http.HandleFunc("/api/products/", productHandler.Item)

	// Swagger documentation
	http.Handle("/swagger/", httpSwagger.WrapHandler)

	// Root route
	http.HandleFunc("/", rootHandler)
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("CampusMarket backend is running."))
}

package api

import (
	"github.com/homefolio/realtorsites/internal/config"
	"github.com/homefolio/realtorsites/internal/db"
	"github.com/homefolio/realtorsites/internal/repository/sqlite"
	"github.com/gorilla/mux"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, database *db.DB) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(database, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	claimsHandler := NewClaimsHandler(repo, repo, repo, cfg.ClaimTTL)
	realtorsHandler := NewRealtorsHandler(repo, repo, repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// Public realtor surface; the claim token is its own credential on the
	// verify endpoints
	r.HandleFunc("/realtors/claims/verify", claimsHandler.PreviewClaim).Methods("GET")
	r.HandleFunc("/realtors/claims/verify", claimsHandler.VerifyClaim).Methods("POST")
	r.HandleFunc("/realtors", realtorsHandler.ListRealtors).Methods("GET")
	r.HandleFunc("/realtors/{id}", realtorsHandler.GetRealtor).Methods("GET")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Claim workflow endpoints
	apiV1.HandleFunc("/realtors/claims", claimsHandler.SubmitClaim).Methods("POST")
	apiV1.HandleFunc("/realtors/claims", claimsHandler.ListClaims).Methods("GET")

	// Profile updates (allow-listed fields only)
	apiV1.HandleFunc("/realtors/{id}", realtorsHandler.UpdateRealtor).Methods("PATCH")

	return r
}

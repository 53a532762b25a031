package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/warriorcare/warriorcare-backend/internal/config"
	"github.com/warriorcare/warriorcare-backend/internal/database"
	"github.com/warriorcare/warriorcare-backend/internal/handlers"
	"github.com/warriorcare/warriorcare-backend/internal/middleware"
	"github.com/warriorcare/warriorcare-backend/internal/routes"
	"github.com/warriorcare/warriorcare-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	// Connect to PostgreSQL
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	if err := database.InitPostgresTables(); err != nil {
		log.Fatal("Failed to initialize PostgreSQL tables:", err)
	}
	log.Println("✅ PostgreSQL tables ready")

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB (clinician notes). The triage pipeline runs without
	// it, so a failure degrades notes rather than killing the server.
	log.Printf("Connecting to MongoDB...")
	if err := database.ConnectMongo(cfg.MongoURI); err != nil {
		log.Printf("⚠️  WARNING: Failed to connect to MongoDB: %v", err)
		log.Println("   Clinician notes will not be available")
	} else {
		defer database.DisconnectMongo()
		if err := services.EnsureNoteIndexes(context.Background()); err != nil {
			log.Printf("⚠️  WARNING: failed to ensure MongoDB note indexes: %v", err)
		} else {
			log.Println("✅ MongoDB note indexes ensured")
		}
	}

	// Initialize Cloudinary service
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		if err := handlers.InitCloudinaryService(cfg); err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("Credential uploads will not be available")
		} else {
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. Credential uploads will not be available")
	}

	// Wire services to the PostgreSQL store and Redis-backed collaborators
	store := database.NewStore(database.PostgresDB)
	triage := services.NewTriageService(store, store, store, services.NewRedisSummaryPublisher()).
		WithCache(services.NewRedisSummaryCache()).
		WithIdempotency(services.NewRedisIdempotencyStore())
	consents := services.NewConsentService(store)
	handlers.Init(store, triage, consents)

	// Start the shared Redis listener that feeds local dashboard subscriptions
	services.StartDashboardSubscriber(context.Background(), store)

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, host check, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	// Health check (no rate limit)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Setup routes
	routes.SetupRoutes(r)

	// Log registered routes for debugging
	log.Println("📋 Registered routes:")
	log.Println("  GET  /health")
	log.Println("  POST /api/auth/signup")
	log.Println("  POST /api/auth/signin")
	log.Println("  POST /api/auth/signout")
	log.Println("  GET  /api/auth/me")
	log.Println("  POST /api/consent")
	log.Println("  GET  /api/consent/status")
	log.Println("  POST /api/checkins")
	log.Println("  GET  /api/checkins")
	log.Println("  GET  /api/participants")
	log.Println("  GET  /api/participants/summary")
	log.Println("  POST /api/notes")
	log.Println("  GET  /api/notes")
	log.Println("  POST /api/upload")
	log.Println("  GET  /ws/dashboard")

	log.Printf("🚀 WarriorCare backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

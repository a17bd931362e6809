package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/kisanlink/agrimandi/config"
	"github.com/kisanlink/agrimandi/internal/handler"
	"github.com/kisanlink/agrimandi/internal/middleware"
	"github.com/kisanlink/agrimandi/internal/repository"
	"github.com/kisanlink/agrimandi/internal/service"
	"github.com/kisanlink/agrimandi/pkg/cache"
	"github.com/kisanlink/agrimandi/pkg/db"
)

func main() {
	// ── Load configuration ──────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// ── Connect to PostgreSQL ───────────────────────────
	pgPool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("failed to connect to PostgreSQL: %v", err)
	}
	defer pgPool.Close()
	log.Println("✓ PostgreSQL connected")

	// ── Connect to Redis ────────────────────────────────
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ── Initialize layers ───────────────────────────────
	marketRepo := repository.NewMarketRepository(pgPool)
	priceRepo := repository.NewPriceRepository(pgPool, redisClient)
	userRepo := repository.NewUserRepository(pgPool)
	postRepo := repository.NewPostRepository(pgPool)
	inventoryRepo := repository.NewInventoryRepository(pgPool)
	otpRepo := repository.NewOTPRepository(redisClient)

	transportSvc := service.NewTransportService(marketRepo, priceRepo)
	authSvc := service.NewAuthService(otpRepo, userRepo, service.LogSender{}, cfg.Auth)
	postSvc := service.NewPostService(postRepo)

	transportHandler := handler.NewTransportHandler(transportSvc)
	marketHandler := handler.NewMarketHandler(marketRepo)
	priceHandler := handler.NewPriceHandler(priceRepo)
	authHandler := handler.NewAuthHandler(authSvc)
	postHandler := handler.NewPostHandler(postSvc)
	inventoryHandler := handler.NewInventoryHandler(inventoryRepo, priceRepo)
	userHandler := handler.NewUserHandler(userRepo)

	// ── Setup router ────────────────────────────────────
	router := mux.NewRouter()

	// Health check endpoint.
	router.HandleFunc("/health", healthHandler(pgPool, redisClient)).Methods(http.MethodGet)

	// API v1 routes.
	api := router.PathPrefix("/api/v1").Subrouter()

	// Auth
	api.HandleFunc("/auth/otp/request", authHandler.RequestOTP).Methods(http.MethodPost)
	api.HandleFunc("/auth/otp/verify", authHandler.VerifyOTP).Methods(http.MethodPost)

	// Mandi directory & prices
	api.HandleFunc("/markets", marketHandler.ListMarkets).Methods(http.MethodGet)
	api.HandleFunc("/markets/{id}", marketHandler.GetMarket).Methods(http.MethodGet)
	api.HandleFunc("/prices/latest", priceHandler.LatestPrice).Methods(http.MethodGet)
	api.HandleFunc("/prices/history", priceHandler.PriceHistory).Methods(http.MethodGet)

	// Transport cost comparison
	api.HandleFunc("/transport/compare", transportHandler.CompareMarkets).Methods(http.MethodPost)
	api.HandleFunc("/transport/vehicles", transportHandler.ListVehicles).Methods(http.MethodGet)

	// Community posts & alerts
	api.HandleFunc("/posts", postHandler.ListPosts).Methods(http.MethodGet)
	api.HandleFunc("/alerts", postHandler.ListAlerts).Methods(http.MethodGet)

	// Authenticated routes
	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.RequireAuth(authSvc))
	authed.HandleFunc("/me", userHandler.GetProfile).Methods(http.MethodGet)
	authed.HandleFunc("/me", userHandler.UpdateProfile).Methods(http.MethodPut)
	authed.HandleFunc("/posts", postHandler.CreatePost).Methods(http.MethodPost)
	authed.HandleFunc("/inventory", inventoryHandler.AddStock).Methods(http.MethodPost)
	authed.HandleFunc("/inventory", inventoryHandler.ListInventory).Methods(http.MethodGet)
	authed.HandleFunc("/sales", inventoryHandler.RecordSale).Methods(http.MethodPost)
	authed.HandleFunc("/sales/summary", inventoryHandler.SalesSummary).Methods(http.MethodGet)

	// Wrap with middleware. CORS lets Swagger UI (and other browser clients) call the API.
	root := middleware.CORS(middleware.RequestLogger(middleware.Recoverer(router)))

	// ── Start HTTP server ───────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.ServerAddr(),
		Handler:      root,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in a goroutine so we can listen for shutdown signals.
	go func() {
		log.Printf("🚀 Server listening on %s", cfg.Server.ServerAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// ── Graceful shutdown ───────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("⏳ Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}

// HealthResponse represents the /health endpoint response.
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// healthHandler returns an HTTP handler that checks PG and Redis connectivity.
func healthHandler(pgPool *pgxpool.Pool, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:   "ok",
			Services: make(map[string]string),
		}

		if err := db.HealthCheck(r.Context(), pgPool); err != nil {
			resp.Status = "degraded"
			resp.Services["postgres"] = "unhealthy: " + err.Error()
		} else {
			resp.Services["postgres"] = "healthy"
		}

		if err := cache.HealthCheck(r.Context(), redisClient); err != nil {
			resp.Status = "degraded"
			resp.Services["redis"] = "unhealthy: " + err.Error()
		} else {
			resp.Services["redis"] = "healthy"
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(resp)
	}
}

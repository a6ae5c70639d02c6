package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/internal/featureflags"
	"github.com/yourorg/unitsphere/internal/gateway"
	"github.com/yourorg/unitsphere/internal/handler"
	"github.com/yourorg/unitsphere/internal/infrastructure/logger"
	"github.com/yourorg/unitsphere/internal/infrastructure/redis"
	"github.com/yourorg/unitsphere/internal/observability/metrics"
	"github.com/yourorg/unitsphere/internal/observability/tracing"
	"github.com/yourorg/unitsphere/internal/repository"
	"github.com/yourorg/unitsphere/internal/security"
	"github.com/yourorg/unitsphere/internal/security/audit"
	"github.com/yourorg/unitsphere/internal/security/auth"
	"github.com/yourorg/unitsphere/internal/security/middleware"
	"github.com/yourorg/unitsphere/internal/security/ratelimit"
	"github.com/yourorg/unitsphere/internal/service"
	"github.com/yourorg/unitsphere/internal/worker"
	"github.com/yourorg/unitsphere/pkg/cache"
	"github.com/yourorg/unitsphere/pkg/config"
	"github.com/yourorg/unitsphere/pkg/database"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting UnitSphere server", slog.String("environment", cfg.Environment))

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, log, "unitsphere", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Connect to Postgres and bootstrap the schema
	dbPool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Migrate(ctx); err != nil {
		log.Error("failed to migrate schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Initialize Redis client
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	// 6. Initialize repositories
	db := dbPool.GetDB()
	userRepo := repository.NewPostgresUserRepository(db, log)
	apartmentRepo := repository.NewPostgresApartmentRepository(db, log)
	agreementRepo := repository.NewPostgresAgreementRepository(db, log)
	couponRepo := repository.NewPostgresCouponRepository(db, log)
	paymentRepo := repository.NewPostgresPaymentRepository(db, log)
	announcementRepo := repository.NewPostgresAnnouncementRepository(db, log)

	// 7. Security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer)
	roleGate := security.NewRoleGate(userRepo, cache.New(), log)
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	auditLogger := audit.NewLogger(log)

	// 8. External payment gateway
	stripeGateway := gateway.NewStripeGateway(cfg.StripeSecretKey, log)

	// 9. Services
	feed := handler.NewAnnouncementFeed(log, cfg.CORSAllowedOrigins)
	userService := service.NewUserService(userRepo, roleGate, auditLogger, log)
	apartmentService := service.NewApartmentService(apartmentRepo, redisClient, cfg, log)
	agreementService := service.NewAgreementService(agreementRepo, apartmentRepo, roleGate, apartmentService, auditLogger, log)
	couponService := service.NewCouponService(couponRepo, log)
	paymentService := service.NewPaymentService(paymentRepo, stripeGateway, cfg, auditLogger, log)
	announcementService := service.NewAnnouncementService(announcementRepo, feed, log)

	// 10. Handlers
	userHandler := handler.NewUserHandler(userService, log)
	apartmentHandler := handler.NewApartmentHandler(apartmentService, log, cfg)
	agreementHandler := handler.NewAgreementHandler(agreementService, log)
	couponHandler := handler.NewCouponHandler(couponService, log)
	paymentHandler := handler.NewPaymentHandler(paymentService, roleGate, log)
	announcementHandler := handler.NewAnnouncementHandler(announcementService, log)
	healthHandler := handler.NewHealthHandler(dbPool, redisClient, log)

	adminOnly := middleware.RequireRoles(roleGate, domain.RoleAdmin)
	residentOnly := middleware.RequireRoles(roleGate, domain.RoleAdmin, domain.RoleMember)

	// 11. Routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/apartments", apartmentHandler.List)
	mux.HandleFunc("GET /api/apartments/{id}", apartmentHandler.Get)
	mux.Handle("POST /api/apartments", adminOnly(http.HandlerFunc(apartmentHandler.Create)))
	mux.Handle("PATCH /api/apartments/{id}", adminOnly(http.HandlerFunc(apartmentHandler.Update)))

	mux.Handle("POST /api/users", middleware.RequireAuth(http.HandlerFunc(userHandler.Register)))
	mux.Handle("GET /api/users/me/role", middleware.RequireAuth(http.HandlerFunc(userHandler.Role)))
	mux.Handle("GET /api/users", adminOnly(http.HandlerFunc(userHandler.List)))
	mux.Handle("PATCH /api/users/{id}/demote", adminOnly(http.HandlerFunc(userHandler.Demote)))

	mux.Handle("POST /api/agreements", middleware.RequireAuth(http.HandlerFunc(agreementHandler.Submit)))
	mux.Handle("GET /api/agreements/pending", adminOnly(http.HandlerFunc(agreementHandler.ListPending)))
	mux.Handle("PATCH /api/agreements/{id}/accept", adminOnly(http.HandlerFunc(agreementHandler.Accept)))
	mux.Handle("PATCH /api/agreements/{id}/reject", adminOnly(http.HandlerFunc(agreementHandler.Reject)))

	mux.HandleFunc("GET /api/coupons", couponHandler.List)
	mux.Handle("POST /api/coupons", adminOnly(http.HandlerFunc(couponHandler.Create)))
	mux.Handle("PATCH /api/coupons/{id}", adminOnly(http.HandlerFunc(couponHandler.Update)))
	if featureflags.Enabled(featureflags.PublicCouponValidation) {
		mux.HandleFunc("POST /api/coupons/validate", couponHandler.Validate)
	} else {
		mux.Handle("POST /api/coupons/validate", residentOnly(http.HandlerFunc(couponHandler.Validate)))
	}

	mux.Handle("POST /api/payments", residentOnly(http.HandlerFunc(paymentHandler.Record)))
	mux.Handle("GET /api/payments", residentOnly(http.HandlerFunc(paymentHandler.History)))
	mux.Handle("POST /api/payments/intent", residentOnly(http.HandlerFunc(paymentHandler.CreateIntent)))

	mux.HandleFunc("GET /api/announcements", announcementHandler.List)
	mux.Handle("POST /api/announcements", adminOnly(http.HandlerFunc(announcementHandler.Create)))
	mux.Handle("GET /ws/announcements", feed)

	// Development token issuer, only in local identity mode
	if cfg.IdentityMode == "local" {
		credentials := auth.NewCredentialStore()
		mux.Handle("POST /api/auth/token", handler.NewTokenHandler(tokenManager, credentials, log))
		log.Warn("local identity mode enabled, development token issuer mounted")
	}

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> tracing -> auth -> rate limit -> content type -> CORS
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			otelhttp.NewHandler(
				middleware.Authenticate(tokenManager, log)(
					middleware.RateLimit(rateLimiter, log)(
						middleware.ValidateJSONContentType(log)(handlerWithCORS),
					),
				),
				"unitsphere.http",
			),
		),
		log,
	)

	// 12. Start coupon sweeper in background
	sweeper := worker.NewCouponSweeper(couponRepo, log, time.Duration(cfg.SweepIntervalMins)*time.Minute)
	go sweeper.Start(ctx)

	// 13. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("identity_mode", cfg.IdentityMode),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop coupon sweeper
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}

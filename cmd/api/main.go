package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/satriojati/kedai/internal/auth"
	"github.com/satriojati/kedai/internal/catalog"
	"github.com/satriojati/kedai/internal/messaging"
	"github.com/satriojati/kedai/internal/orders"
	"github.com/satriojati/kedai/internal/ratelimit"
	"github.com/satriojati/kedai/internal/telemetry"
)

const serviceVersion = "0.1.0"

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "kedai-api", serviceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("kedai-api", serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime metrics", "error", err)
		os.Exit(1)
	}

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		logger.Error("REDIS_ADDR environment variable is required")
		os.Exit(1)
	}
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() { _ = redisClient.Close() }()

	adminUser := os.Getenv("ADMIN_USERNAME")
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if adminUser == "" || adminPass == "" {
		logger.Error("ADMIN_USERNAME and ADMIN_PASSWORD environment variables are required")
		os.Exit(1)
	}

	var producer *messaging.Producer
	if kafkaBrokers := os.Getenv("KAFKA_BROKERS"); kafkaBrokers != "" {
		producer = messaging.NewProducer(strings.Split(kafkaBrokers, ","), messaging.TopicOrderCreated)
		defer func() { _ = producer.Close() }()
	}

	orderRepo := orders.NewOrderRepository(db)
	orderService := orders.NewService(orderRepo, producerOrNil(producer), logger)
	orderHandler := orders.NewHandler(orderService, logger)

	catalogRepo := catalog.NewRepository(db)
	catalogHandler := catalog.NewHandler(catalogRepo, logger)

	guard := auth.NewGuard(redisClient, adminUser, adminPass, 12*time.Hour, logger)
	limiter := ratelimit.NewLimiter(redisClient, 10, time.Minute, logger)

	mux := http.NewServeMux()

	// Public storefront.
	mux.HandleFunc("GET /menu", telemetry.WithHTTPRoute(catalogHandler.HandleMenu))
	mux.HandleFunc("GET /categories", telemetry.WithHTTPRoute(catalogHandler.HandleListCategories))
	mux.Handle("POST /orders", limiter.Middleware(telemetry.WithHTTPRoute(orderHandler.HandleCreate)))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(orderHandler.HandleGet))
	mux.HandleFunc("GET /orders/{id}/qrcode", telemetry.WithHTTPRoute(orderHandler.HandleQRCode))

	// Admin session endpoints sit outside the guard.
	mux.HandleFunc("POST /admin/login", telemetry.WithHTTPRoute(guard.HandleLogin))
	mux.HandleFunc("POST /admin/logout", telemetry.WithHTTPRoute(guard.HandleLogout))

	admin := http.NewServeMux()
	admin.HandleFunc("GET /admin/orders", telemetry.WithHTTPRoute(orderHandler.HandleList))
	admin.HandleFunc("POST /admin/orders", telemetry.WithHTTPRoute(orderHandler.HandleAdminCreate))
	admin.HandleFunc("GET /admin/orders/{id}", telemetry.WithHTTPRoute(orderHandler.HandleGet))
	admin.HandleFunc("PUT /admin/orders/{id}", telemetry.WithHTTPRoute(orderHandler.HandleUpdateStatus))
	admin.HandleFunc("DELETE /admin/orders/{id}", telemetry.WithHTTPRoute(orderHandler.HandleDelete))
	admin.HandleFunc("GET /admin/categories", telemetry.WithHTTPRoute(catalogHandler.HandleListCategories))
	admin.HandleFunc("POST /admin/categories", telemetry.WithHTTPRoute(catalogHandler.HandleCreateCategory))
	admin.HandleFunc("PUT /admin/categories/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleUpdateCategory))
	admin.HandleFunc("DELETE /admin/categories/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleDeleteCategory))
	admin.HandleFunc("GET /admin/foods", telemetry.WithHTTPRoute(catalogHandler.HandleListFoods))
	admin.HandleFunc("POST /admin/foods", telemetry.WithHTTPRoute(catalogHandler.HandleCreateFood))
	admin.HandleFunc("GET /admin/foods/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleGetFood))
	admin.HandleFunc("PUT /admin/foods/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleUpdateFood))
	admin.HandleFunc("DELETE /admin/foods/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleDeleteFood))
	mux.Handle("/admin/", guard.Middleware(admin))

	mux.Handle("GET /metrics", metricsHandler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", auth.CSRFHeader},
		AllowCredentials: true,
	}).Handler(mux)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(corsHandler, "kedai-api",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting kedai api", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

// producerOrNil keeps a typed-nil *messaging.Producer from sneaking into
// the service's Producer interface.
func producerOrNil(p *messaging.Producer) orders.Producer {
	if p == nil {
		return nil
	}
	return p
}

func allowedOrigins() []string {
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		return strings.Split(origins, ",")
	}
	return []string{"*"}
}

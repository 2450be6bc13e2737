package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-canteen/internal/adapter/graphql"
	"campus-canteen/internal/adapter/logger"
	"campus-canteen/internal/adapter/postgres"
	"campus-canteen/internal/adapter/rabbitmq"
	"campus-canteen/internal/adapter/storage"
	"campus-canteen/internal/app/cart"
	"campus-canteen/internal/app/checkout"
	"campus-canteen/internal/app/session"
	"campus-canteen/internal/app/tracking"
	"campus-canteen/internal/config"

	amqpAdapter "campus-canteen/internal/adapter/amqp"
	httpAdapter "campus-canteen/internal/adapter/http"
)

func main() {
	mode := flag.String("mode", "", "Service mode: cart-service, tracking-service, status-worker, notification-subscriber")
	port := flag.Int("port", 3000, "HTTP port")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	lgr := logger.New(*mode)

	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})

	switch *mode {
	case "cart-service":
		runCartService(ctx, cfg, db, mqConn, lgr, *port)

	case "tracking-service":
		runTrackingService(ctx, cfg, db, lgr, *port)

	case "status-worker":
		runStatusWorker(ctx, db, mqConn, lgr)

	case "notification-subscriber":
		runNotificationSubscriber(ctx, mqConn, lgr)

	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

func runCartService(ctx context.Context, cfg *config.Config, db postgres.DB, mqConn rabbitmq.Connection, lgr logger.Logger, port int) {
	snaps, err := storage.NewFileSnapshotter(cfg.Storage.StateDir)
	if err != nil {
		log.Fatalf("Failed to open state directory: %v", err)
	}

	remote := graphql.NewClient(cfg.API, lgr)

	cartStore, err := cart.NewStore(snaps, lgr)
	if err != nil {
		log.Fatalf("Failed to restore cart state: %v", err)
	}

	sessionStore, err := session.NewStore(snaps, remote, lgr)
	if err != nil {
		log.Fatalf("Failed to restore session state: %v", err)
	}

	orderRepo := postgres.NewOrderRepository(db)
	publisher := rabbitmq.NewPublisher(mqConn)
	checkoutService := checkout.NewService(cartStore, remote, orderRepo, publisher, lgr)

	cartHandler := httpAdapter.NewCartHandler(cartStore, remote, checkoutService, sessionStore, lgr)
	sessionHandler := httpAdapter.NewSessionHandler(sessionStore, lgr)

	mux := http.NewServeMux()
	mux.HandleFunc("/cart", cartHandler.GetCart)
	mux.HandleFunc("/cart/items", cartHandler.HandleItems)
	mux.HandleFunc("/cart/items/", cartHandler.HandleItems)
	mux.HandleFunc("/cart/pickup", cartHandler.HandlePickup)
	mux.HandleFunc("/cart/sync", cartHandler.SyncCart)
	mux.HandleFunc("/checkout", cartHandler.Checkout)
	mux.HandleFunc("/menu", cartHandler.HandleMenu)
	mux.HandleFunc("/canteens", cartHandler.HandleCanteens)
	mux.HandleFunc("/canteens/", cartHandler.HandleCanteens)
	mux.HandleFunc("/session", sessionHandler.HandleSession)
	mux.HandleFunc("/session/", sessionHandler.HandleSession)

	handler := httpAdapter.LoggingMiddleware(lgr)(mux)
	handler = httpAdapter.RecoveryMiddleware(lgr)(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Cart Service started on port %d", port), "startup", map[string]interface{}{
		"port":      port,
		"api_url":   cfg.API.URL,
		"state_dir": cfg.Storage.StateDir,
	})

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", "Shutting down Cart Service", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
	}
}

func runTrackingService(ctx context.Context, cfg *config.Config, db postgres.DB, lgr logger.Logger, port int) {
	orderRepo := postgres.NewOrderRepository(db)
	remote := graphql.NewClient(cfg.API, lgr)

	trackingService := tracking.NewService(orderRepo, lgr)

	trackingHandler := httpAdapter.NewTrackingHandler(trackingService, remote, lgr)

	mux := http.NewServeMux()
	mux.HandleFunc("/orders", trackingHandler.HandleOrders)
	mux.HandleFunc("/orders/", trackingHandler.HandleOrders)

	handler := httpAdapter.LoggingMiddleware(lgr)(mux)
	handler = httpAdapter.RecoveryMiddleware(lgr)(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Tracking Service started on port %d", port), "startup", map[string]interface{}{
		"port": port,
	})

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", "Shutting down Tracking Service", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
	}
}

func runStatusWorker(ctx context.Context, db postgres.DB, mqConn rabbitmq.Connection, lgr logger.Logger) {
	orderRepo := postgres.NewOrderRepository(db)
	trackingService := tracking.NewService(orderRepo, lgr)

	consumer := rabbitmq.NewConsumer(mqConn, lgr)
	statusHandler := amqpAdapter.NewStatusHandler(trackingService, lgr)

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	lgr.Info("service_started", "Status Worker started", "startup", nil)

	go func() {
		if err := consumer.ConsumeStatusUpdates(workerCtx, statusHandler.HandleStatusUpdate); err != nil && workerCtx.Err() == nil {
			lgr.Error("consumer_error", "Error consuming status updates", "runtime", nil, err)
		}
	}()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint

	lgr.Info("shutdown_initiated", "Shutting down Status Worker", "shutdown", nil)
	cancel()
}

func runNotificationSubscriber(ctx context.Context, mqConn rabbitmq.Connection, lgr logger.Logger) {
	consumer := rabbitmq.NewConsumer(mqConn, lgr)
	notificationHandler := amqpAdapter.NewNotificationHandler(lgr)

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	lgr.Info("service_started", "Notification Subscriber started", "startup", nil)

	go func() {
		if err := consumer.ConsumeStatusUpdates(subCtx, notificationHandler.HandleNotification); err != nil && subCtx.Err() == nil {
			lgr.Error("consumer_error", "Error consuming status updates", "runtime", nil, err)
		}
	}()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint

	lgr.Info("shutdown_initiated", "Shutting down Notification Subscriber", "shutdown", nil)
	cancel()
}

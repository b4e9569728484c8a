package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/cache"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/cart"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/config"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/consumer"
	h "github.com/DEBAGanov/PizzaNatApp-sub002/internal/http"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/pipeline"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/remote"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/repository"
)

func main() {
	cfg := config.Load()

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("failed to set up store: %v", err)
	}
	defer store.Close()

	var cartCache cache.CartCache
	if cfg.RedisAddr != "" {
		cartCache = cache.NewRedisCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	} else {
		log.Println("REDIS_ADDR not set, using in-memory cart cache")
		cartCache = cache.NewMemoryCache()
	}

	cartSvc := cart.NewService(store, cartCache)
	api := remote.NewClient(cfg.OrdersAPIURL, cfg.OrdersAPITimeout)
	orderPipeline := pipeline.New(store, api, cartSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(cfg.KafkaBrokers) > 0 {
		statusConsumer := consumer.NewConsumer(orderPipeline, cfg.ConsumerGroup, cfg.KafkaBrokers...)
		defer statusConsumer.Close()
		go statusConsumer.Run(ctx)
	} else {
		log.Println("KAFKA_BROKERS not set, order status events disabled")
	}

	cartHandler := h.NewCartHandler(cartSvc, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(cartSvc, orderPipeline, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(orderPipeline, cfg.RequestTimeout)
	paymentHandler := h.NewPaymentHandler(orderPipeline, cfg.RequestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.UserIDMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
		})
		r.Post("/checkout", checkoutHandler.Checkout)
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
			r.Post("/{order_id}/check-status", ordersHandler.CheckStatus)
			r.Post("/{order_id}/retry", checkoutHandler.Retry)
		})
		r.Route("/payment", func(r chi.Router) {
			r.Post("/return", paymentHandler.PaymentReturn)
			r.Post("/navigation-check", paymentHandler.CheckNavigation)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront core starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

func buildStore(cfg *config.Config) (repository.Store, error) {
	if cfg.PostgresHost == "" {
		log.Println("POSTGRES_HOST not set, using in-memory store")
		return repository.NewMemoryStore(), nil
	}

	cred := &repository.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.MigrationsDir,
	}
	repo, err := repository.NewRepository(cred)
	if err != nil {
		return nil, err
	}
	if err := repo.RunMigrations(cred); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}

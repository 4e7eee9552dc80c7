package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/auth"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/bookings"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/catalog"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/checkout"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/config"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/httpx"
	kafkax "github.com/nabeelarbab82-debug/LuxuryYachts/internal/kafka"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/logging"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/orders"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/outbox"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/payments"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/postgres"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/reconcile"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/redisx"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/refnum"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/sweep"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	if err := postgres.Migrate(ctx, cfg.PostgresDSN); err != nil {
		log.WithError(err).Fatal("db migrate")
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer, fed by the outbox relay
	prod := kafkax.NewProducer(cfg.KafkaBrokers)

	// Repos
	refs := refnum.NewGenerator()
	outboxRepo := &outbox.Repo{DB: db}
	catalogRepo := &catalog.Repo{DB: db}
	bookingRepo := &bookings.Repo{DB: db, Refs: refs}
	orderRepo := &orders.Repo{
		DB:       db,
		Refs:     refs,
		Outbox:   outboxRepo,
		Topic:    cfg.PaymentTopic,
		Producer: cfg.ServiceName,
	}
	adminRepo := &auth.Repo{DB: db}

	// Services
	gateway := payments.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	statusCache := &redisx.StatusCache{Client: rdb}

	checkoutSvc := &checkout.Service{
		Packages:   catalogRepo,
		Bookings:   bookingRepo,
		Orders:     orderRepo,
		Gateway:    gateway,
		Currency:   cfg.Currency,
		DefaultVAT: cfg.VATPercent,
		Log:        log,
	}
	reconciler := &reconcile.Service{
		Orders:  orderRepo,
		Gateway: gateway,
		Cache:   statusCache,
		Dedup:   &redisx.Dedup{Client: rdb, Service: "webhook"},
		Log:     log,

		MaxOpenAge: cfg.SweepMaxAge,
	}
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	// HTTP
	router := httpx.NewRouter(log)
	api := &httpx.API{
		Catalog:  &httpx.CatalogHandler{Store: catalogRepo, Log: log},
		Bookings: &httpx.BookingsHandler{Checkout: checkoutSvc, Store: bookingRepo, Log: log},
		Payments: &httpx.PaymentsHandler{
			Checkout:   checkoutSvc,
			Reconciler: reconciler,
			Events:     gateway,
			Orders:     orderRepo,
			Cache:      statusCache,
			Log:        log,
		},
		Admin: &httpx.AdminHandler{
			Auth:       &auth.Service{Admins: adminRepo, Tokens: issuer},
			Orders:     orderRepo,
			Reconciler: reconciler,
			SweepAfter: cfg.SweepAfter,
			Log:        log,
		},
		Issuer:  issuer,
		Limiter: redisx.NewLimiter(rdb, cfg.RateLimitCapacity, cfg.RateLimitRefill),
		Log:     log,
	}
	api.Register(router)

	// Background loops
	var wg sync.WaitGroup
	relay := &outbox.Relay{
		Store:     outboxRepo,
		Publisher: prod,
		Interval:  cfg.OutboxInterval,
		Batch:     outbox.DefaultBatch,
		Log:       log,
	}
	sched := &sweep.Scheduler{
		Reconciler: reconciler,
		Interval:   cfg.SweepInterval,
		After:      cfg.SweepAfter,
		Log:        log,
	}
	wg.Add(2)
	go func() { defer wg.Done(); relay.Run(ctx) }()
	go func() { defer wg.Done(); sched.Start(ctx) }()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel() // stop relay and sweep
	wg.Wait()
	if err := prod.Close(); err != nil {
		log.WithError(err).Warn("kafka producer close")
	}
}

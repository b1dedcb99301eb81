package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/xenking/stripe-checkout/internal/api"
	"github.com/xenking/stripe-checkout/internal/domain/item"
	"github.com/xenking/stripe-checkout/internal/domain/order"
	"github.com/xenking/stripe-checkout/internal/payment"
	"github.com/xenking/stripe-checkout/internal/repository"
	"github.com/xenking/stripe-checkout/internal/stripe"
	"github.com/xenking/stripe-checkout/pkg/health"
	"github.com/xenking/stripe-checkout/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.SetReady(true)

	// Repositories.
	itemRepo := repository.NewItemRepository(pool)
	discountRepo := repository.NewDiscountRepository(pool)
	taxRepo := repository.NewTaxRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	// Payment gateway client: one attempt per request, bounded by a
	// client-side timeout, traced via otelhttp.
	gateway := stripe.NewClient(cfg.Stripe.BaseURL, &http.Client{
		Timeout: cfg.Stripe.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	})

	// Domain services.
	orderService := order.NewService(itemRepo, discountRepo, taxRepo, orderRepo, lg.Named("order"))
	checkoutService := payment.NewService(
		payment.ServiceConfig{
			SuccessURL: cfg.Stripe.SuccessURL,
			CancelURL:  cfg.Stripe.CancelURL,
		},
		itemRepo,
		orderRepo,
		gateway,
		payment.NewCredentials(cfg.Stripe.SecretKeyUSD, cfg.Stripe.SecretKeyRUB),
		lg.Named("checkout"),
	)

	// HTTP handlers.
	h := api.NewHandler(
		api.HandlerConfig{
			PublishableKeys: map[item.Currency]string{
				item.USD: cfg.Stripe.PublishableKeyUSD,
				item.RUB: cfg.Stripe.PublishableKeyRUB,
			},
		},
		itemRepo,
		orderRepo,
		orderService,
		checkoutService,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins: cfg.CORS.Origins,
				AllowHeaders: []string{"Content-Type", "X-User-ID"},
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

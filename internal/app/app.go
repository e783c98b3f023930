package app

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/leafbound/bookstall/internal/domain/checkout"
	"github.com/leafbound/bookstall/internal/handler"
	"github.com/leafbound/bookstall/internal/promo"
	"github.com/leafbound/bookstall/internal/session"
	"github.com/leafbound/bookstall/internal/storage/backend"
	"github.com/leafbound/bookstall/pkg/health"
	"github.com/leafbound/bookstall/pkg/httpmiddleware"
	"github.com/leafbound/bookstall/pkg/kv"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// Session state storage. Falls back to process memory when the data
	// directory is unusable so the storefront keeps serving, just without
	// persistence across restarts.
	var store kv.Store
	fileStore, err := kv.NewFileStore(cfg.DataDir)
	if err != nil {
		lg.Warn("Session storage unavailable, state will not survive restarts",
			zap.String("data_dir", cfg.DataDir), zap.Error(err))
		store = kv.NewMemStore()
	} else {
		store = fileStore
	}

	// Backend client for the book catalog and order submission.
	client, err := backend.NewClient(cfg.BackendURL)
	if err != nil {
		return errors.Wrap(err, "create backend client")
	}
	catalogRepo := backend.NewCatalogRepository(client)
	orderSubmitter := backend.NewOrderSubmitter(client)

	// Promo codes. A missing list disables discounts rather than failing
	// startup.
	promos := promo.NewSet(nil)
	if cfg.PromoFile != "" {
		promos, err = promo.LoadFile(cfg.PromoFile)
		if err != nil {
			lg.Warn("Promo codes unavailable, discounts disabled",
				zap.String("path", cfg.PromoFile), zap.Error(err))
			promos = promo.NewSet(nil)
		} else {
			lg.Info("Promo codes loaded", zap.Int("count", promos.Len()))
		}
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLiveness("goroutines", time.Second, func(context.Context) error {
		if n := runtime.NumGoroutine(); n > 10000 {
			return errors.Errorf("too many goroutines: %d", n)
		}
		return nil
	})
	healthSvc.AddReadiness("backend", 5*time.Second, client.Ping)
	if fileStore != nil {
		writable := fileStore.WritableCheck()
		healthSvc.AddReadiness("storage", time.Second, func(context.Context) error {
			return writable()
		})
	}
	healthSvc.SetReady(true)

	// Domain services.
	sessions := session.NewManager(store, lg.Named("session"))
	checkoutSvc := checkout.NewService(promos, orderSubmitter)

	// Mux: health endpoints + storefront API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	handler.New(catalogRepo, sessions, checkoutSvc).Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowedOrigins:   cfg.CORS.Origins,
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAgeSeconds:    86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("bookstall", m.TracerProvider(), m.MeterProvider()),
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

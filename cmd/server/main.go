package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitbill/internal/auth"
	"github.com/mmynk/splitbill/internal/config"
	"github.com/mmynk/splitbill/internal/metrics"
	"github.com/mmynk/splitbill/internal/middleware"
	"github.com/mmynk/splitbill/internal/receipt"
	"github.com/mmynk/splitbill/internal/service"
	"github.com/mmynk/splitbill/internal/storage"
	"github.com/mmynk/splitbill/internal/storage/redis"
	"github.com/mmynk/splitbill/internal/storage/sqlite"
	"github.com/mmynk/splitbill/internal/telemetry"
	"github.com/mmynk/splitbill/pkg/logging"
)

const serviceName = "splitbill"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("Failed to flush traces", "error", err)
		}
	}()

	store, purger, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var parser service.ReceiptParser
	if cfg.OCRURL != "" {
		parser = receipt.NewClient(cfg.OCRURL, receipt.Options{
			Timeout:       cfg.OCRTimeout,
			MaxConcurrent: cfg.OCRMaxConcurrent,
		})
		slog.Info("Receipt parsing enabled", "url", cfg.OCRURL)
	} else {
		slog.Warn("OCR_URL not set, receipt uploads are disabled")
	}

	mux := http.NewServeMux()

	allocPath, allocHandler := service.NewAllocationServiceHandler(
		service.NewAllocationService(m),
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	)
	mux.Handle(allocPath, allocHandler)
	mux.Handle("POST /api/receipt", service.NewReceiptHandler(parser, cfg.MaxUploadBytes, m))

	shares := service.NewShareService(store, auth.NewShareGuard(cfg.TokenSecret, cfg.ShareTTL),
		service.WithShareTTL(cfg.ShareTTL),
		service.WithPublicURL(cfg.PublicURL),
		service.WithShareMetrics(m),
	)
	shares.Register(mux)

	mux.Handle("GET /healthz", service.HealthHandler(store))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	if cfg.StaticPath != "" {
		staticDir, err := filepath.Abs(cfg.StaticPath)
		if err != nil {
			return fmt.Errorf("failed to resolve static path: %w", err)
		}
		slog.Info("Serving static files", "path", staticDir)
		mux.Handle("/", staticHandler(staticDir))
	}

	handler := middleware.Chain(mux,
		middleware.RequestLogger,
		middleware.CORS(cfg.AllowedOrigin),
		middleware.Instrument(m),
	)

	srv := &http.Server{
		Addr: cfg.Addr(),
		// h2c serves HTTP/2 without TLS for Connect clients.
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server starting", "address", srv.Addr, "backend", cfg.ShareBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if purger != nil && cfg.PurgeInterval > 0 {
		g.Go(func() error {
			purgeExpired(gctx, purger, cfg.PurgeInterval)
			return nil
		})
	}

	return g.Wait()
}

// expiryPurger is implemented by stores that need expired shares removed
// explicitly. Redis expires keys on its own.
type expiryPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, expiryPurger, error) {
	switch cfg.ShareBackend {
	case config.BackendRedis:
		store, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		slog.Info("Storage initialized", "backend", "redis", "addr", cfg.RedisAddr)
		return store, nil, nil
	default:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		slog.Info("Storage initialized", "backend", "sqlite", "database", cfg.DBPath)
		return store, store, nil
	}
}

func purgeExpired(ctx context.Context, p expiryPurger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("Failed to purge expired shares", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("Purged expired shares", "count", n)
			}
		}
	}
}

// staticHandler serves the web client. Unknown paths fall back to
// index.html so client-side routes like /summary keep working.
func staticHandler(staticDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/"+service.AllocationServiceName+"/") || strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	})
}

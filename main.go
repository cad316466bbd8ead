package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/SirPelzy/kays-laundry/backend"
	"github.com/SirPelzy/kays-laundry/backend/metrics"
	"github.com/SirPelzy/kays-laundry/backend/services"
	"github.com/SirPelzy/kays-laundry/backend/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o backend.Overrides

	cmd := &cobra.Command{
		Use:          "kays-laundry",
		Short:        "Serve the Kay's Laundry web app and its services API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := backend.LoadDotEnv(); err != nil {
				log.Printf("config: %v", err)
			}
			cfg, err := backend.LoadConfig(o)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&o.ConfigFile, "config", "", "path to a TOML config file")
	cmd.Flags().IntVar(&o.Port, "port", 0, "listen port (default 3000, or $PORT)")
	cmd.Flags().StringVar(&o.DataSource, "data-source", "", `services data source: "postgres" or "static"`)
	cmd.Flags().StringVar(&o.BuildDir, "build-dir", "", "directory holding the compiled frontend")
	return cmd
}

func run(ctx context.Context, cfg backend.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	provider, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	log.Printf("Configuring CORS to allow origin: %s", cfg.AllowedOrigin)
	log.Printf("Serving static files from: %s", cfg.BuildDir)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: backend.NewHandler(cfg, backend.RouterDeps{
			Provider: provider,
			BuildDir: cfg.BuildDir,
			Metrics:  promhttp.Handler(),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		log.Printf("server: listen on %s: %v", srv.Addr, err)
		return fmt.Errorf("listen: %w", err)
	}
	log.Printf("Server listening on port %d", cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server: %v", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutdown signal received, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server: forced shutdown: %v", err)
	}
	log.Println("Server stopped")
	return nil
}

// newProvider builds the one data provider this process uses and a function
// releasing its resources.
func newProvider(ctx context.Context, cfg backend.Config) (services.Provider, func(), error) {
	if cfg.DataSource == backend.DataSourceStatic {
		log.Printf("services: using the static placeholder catalogue")
		return services.NewStatic(), func() {}, nil
	}

	pool, err := store.NewPool(ctx, store.PoolOptions{
		DSN:      cfg.DatabaseURL,
		SSL:      cfg.DatabaseSSL,
		MaxConns: cfg.DatabaseMaxConns,
	})
	if err != nil {
		return nil, nil, err
	}
	metrics.RegisterPool(prometheus.DefaultRegisterer, pool.Stat)
	go store.Probe(ctx, pool)

	return store.NewServiceStore(pool), pool.Close, nil
}

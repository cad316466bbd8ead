package store

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions configures the process-wide connection pool.
type PoolOptions struct {
	DSN      string
	SSL      bool
	MaxConns int32
}

// NewPool builds the pool from opts. It does not dial; connectivity is
// reported separately by Probe so an unreachable database never stops startup.
func NewPool(ctx context.Context, opts PoolOptions) (*pgxpool.Pool, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("store: empty connection string")
	}

	cfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("store: parse connection string: %w", err)
	}

	cfg.MaxConns = 10
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	cfg.MaxConnLifetime = time.Hour

	// an explicit sslmode wins over the SSL toggle
	if !hasSSLMode(opts.DSN) {
		applySSL(cfg, opts.SSL)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: create pool: %w", err)
	}
	return pool, nil
}

// hasSSLMode reports whether dsn, or PGSSLMODE, sets sslmode explicitly.
// URLs are checked by query parameter, keyword/value strings by key.
func hasSSLMode(dsn string) bool {
	if os.Getenv("PGSSLMODE") != "" {
		return true
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return false
		}
		return u.Query().Has("sslmode")
	}

	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(f, "sslmode=") {
			return true
		}
		// "sslmode = require" splits into separate fields
		if f == "sslmode" && i+1 < len(fields) && strings.HasPrefix(fields[i+1], "=") {
			return true
		}
	}
	return false
}

// applySSL mirrors the hosted-database setup: TLS is required but the server
// certificate is not verified. With ssl off the connection is plaintext.
func applySSL(cfg *pgxpool.Config, ssl bool) {
	cfg.ConnConfig.Fallbacks = nil
	if !ssl {
		cfg.ConnConfig.TLSConfig = nil
		return
	}
	cfg.ConnConfig.TLSConfig = &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // managed databases present self-signed certs
		ServerName:         cfg.ConnConfig.Host,
	}
}

// Probe borrows one connection, runs SELECT NOW() and logs the outcome.
// Failures are logged only.
func Probe(ctx context.Context, pool *pgxpool.Pool) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		log.Printf("store: error acquiring connection for startup probe: %v", err)
		return
	}
	defer conn.Release()

	var now time.Time
	if err := conn.QueryRow(ctx, "SELECT NOW()").Scan(&now); err != nil {
		log.Printf("store: error executing startup probe query: %v", err)
		return
	}
	log.Printf("store: connected to PostgreSQL (tls=%t) at %s", pool.Config().ConnConfig.TLSConfig != nil, now.Format(time.RFC3339))
}

package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SirPelzy/kays-laundry/backend/services"
)

const listServicesSQL = `
	SELECT id, name, description, price_per_unit, unit
	FROM services
	ORDER BY id`

// pooledConn is the part of *pgxpool.Conn the repo needs.
type pooledConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Release()
}

type connAcquirer interface {
	Acquire(ctx context.Context) (pooledConn, error)
}

type poolAcquirer struct {
	pool *pgxpool.Pool
}

func (a poolAcquirer) Acquire(ctx context.Context) (pooledConn, error) {
	c, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ServiceStore lists services from the services table.
type ServiceStore struct {
	conns connAcquirer
	pool  *pgxpool.Pool
}

// NewServiceStore returns a provider reading through pool.
func NewServiceStore(pool *pgxpool.Pool) *ServiceStore {
	return &ServiceStore{conns: poolAcquirer{pool: pool}, pool: pool}
}

// ListServices returns every service ordered by id. The borrowed connection
// is released exactly once on every path.
func (s *ServiceStore) ListServices(ctx context.Context) ([]services.Service, error) {
	conn, err := s.conns.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", services.ErrDataUnavailable, services.ErrConnectionFailure, err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, listServicesSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", services.ErrDataUnavailable, services.ErrQueryFailure, err)
	}
	defer rows.Close()

	out := make([]services.Service, 0)
	for rows.Next() {
		var r serviceRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.PricePerUnit, &r.Unit); err != nil {
			return nil, fmt.Errorf("%w: %w: scan: %w", services.ErrDataUnavailable, services.ErrQueryFailure, err)
		}
		svc, err := mapServiceRow(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %w: %w", services.ErrDataUnavailable, services.ErrQueryFailure, err)
		}
		out = append(out, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", services.ErrDataUnavailable, services.ErrQueryFailure, err)
	}
	return out, nil
}

// Ping checks the pool can reach the database.
func (s *ServiceStore) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

// serviceRow is a raw row of the services table.
type serviceRow struct {
	ID           int64
	Name         string
	Description  pgtype.Text
	PricePerUnit pgtype.Numeric
	Unit         string
}

var errInvalidPrice = errors.New("invalid price_per_unit")

// mapServiceRow converts a raw row to a Service, coercing the NUMERIC price
// to float64.
func mapServiceRow(r serviceRow) (services.Service, error) {
	price, err := r.PricePerUnit.Float64Value()
	if err != nil {
		return services.Service{}, fmt.Errorf("service %d: %w: %w", r.ID, errInvalidPrice, err)
	}
	if !price.Valid || math.IsNaN(price.Float64) || math.IsInf(price.Float64, 0) || price.Float64 < 0 {
		return services.Service{}, fmt.Errorf("service %d: %w", r.ID, errInvalidPrice)
	}

	return services.Service{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description.String,
		PricePerUnit: price.Float64,
		Unit:         r.Unit,
	}, nil
}

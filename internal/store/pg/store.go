// Package pg implementa el contrato de store sobre PostgreSQL (pgx).
//
// Cada operación mutadora abre su propia unidad de trabajo contra el pool y
// commitea antes de retornar; no hay transacción compartida entre llamadas.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/hellojane/internal/domain/identity"
	"github.com/dropDatabas3/hellojane/internal/observability/logger"
)

// pgUniqueViolation es el SQLSTATE de violación de constraint única.
const pgUniqueViolation = "23505"

// Store implementa store.Store y store.RoleStore sobre un pool pgx.
type Store struct{ pool *pgxpool.Pool }

// Config ajusta el pool subyacente.
type Config struct {
	MaxConns        int    `yaml:"max_conns"`
	MinConns        int    `yaml:"min_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
}

// New construye el store sobre el DSN dado. El ping inicial es best-effort:
// la app puede arrancar aunque la DB esté temporalmente caída.
func New(ctx context.Context, dsn string, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
			pcfg.MaxConnIdleTime = d
		}
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 8
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	log := logger.Named("store.pg")
	if err := pool.Ping(ctx); err != nil {
		log.Warn("startup ping failed", logger.Err(err))
	} else {
		log.Info("pool ready", logger.Int("max_conns", int(pcfg.MaxConns)))
	}

	return &Store{pool: pool}, nil
}

// NewWithPool envuelve un pool existente (tests, métricas compartidas).
func NewWithPool(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

// Pool expone el pool interno para usos avanzados (metrics/migraciones).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// PoolStats devuelve un snapshot del estado del pool.
func (s *Store) PoolStats() *pgxpool.Stat {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Stat()
}

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// wrapPersistence envuelve un error de driver en la taxonomía del dominio.
// Nunca dejamos cruzar el tipo crudo de pgx/pgconn por el boundary del store.
func wrapPersistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", identity.ErrPersistence, op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

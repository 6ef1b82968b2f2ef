package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"blockengine/internal/coretypes"
	"blockengine/internal/ledger"
)

// PGStore durably appends resolved ledger entries to Postgres, adapted
// from the teacher's internal/database connection-pool setup and plain
// parameterized INSERT style.
type PGStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPGStore opens a connection pool against dsn and verifies it with a
// ping.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PGStore{
		pool:   pool,
		logger: log.With().Str("component", "PGStore").Logger(),
	}, nil
}

// Schema is the DDL the operator runs once before enabling Postgres
// persistence.
const Schema = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	id SERIAL PRIMARY KEY,
	block_index INTEGER NOT NULL,
	pattern SMALLINT NOT NULL,
	direction SMALLINT NOT NULL,
	pnl DOUBLE PRECISION NOT NULL,
	verdict SMALLINT NOT NULL,
	is_real BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// AppendEntry inserts one resolved ledger entry.
func (s *PGStore) AppendEntry(ctx context.Context, e ledger.Entry, isReal bool) error {
	query := `
		INSERT INTO ledger_entries (block_index, pattern, direction, pnl, verdict, is_real)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query,
		e.BlockIndex,
		int16(e.Pattern),
		int16(e.Direction),
		e.PnL,
		int16(e.Verdict),
		isReal,
	)
	if err != nil {
		s.logger.Error().Err(err).Uint32("block_index", e.BlockIndex).Msg("failed to append ledger entry")
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// PatternPnL aggregates real PnL per pattern directly in Postgres, used
// by the /stats endpoint when Postgres is the source of truth instead of
// the in-memory ledger.
func (s *PGStore) PatternPnL(ctx context.Context) (map[coretypes.PatternID]float64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pattern, SUM(pnl) FROM ledger_entries WHERE is_real GROUP BY pattern`)
	if err != nil {
		return nil, fmt.Errorf("query pattern pnl: %w", err)
	}
	defer rows.Close()

	result := make(map[coretypes.PatternID]float64)
	for rows.Next() {
		var pattern int16
		var pnl float64
		if err := rows.Scan(&pattern, &pnl); err != nil {
			return nil, fmt.Errorf("scan pattern pnl row: %w", err)
		}
		result[coretypes.PatternID(pattern)] = pnl
	}
	return result, rows.Err()
}

// Close releases the underlying connection pool.
func (s *PGStore) Close() {
	s.pool.Close()
}

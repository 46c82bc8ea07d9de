package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ammledger/internal/model"
)

// Store provides Postgres persistence for pool events and snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutEventBatch inserts applied events keyed by sequence number. Replaying
// the same sequence upserts the same row, so resumed runs stay idempotent.
func (s *Store) PutEventBatch(ctx context.Context, poolName string, events []model.EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(`
			INSERT INTO pool_events (
				pool_name, seq, kind, account, amount1, amount2, shares,
				direction, amount_in, amount_out, reserve1_after, reserve2_after,
				event_ts, applied_at, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now())
			ON CONFLICT (pool_name, seq)
			DO UPDATE SET
				kind = EXCLUDED.kind,
				account = EXCLUDED.account,
				amount1 = EXCLUDED.amount1,
				amount2 = EXCLUDED.amount2,
				shares = EXCLUDED.shares,
				direction = EXCLUDED.direction,
				amount_in = EXCLUDED.amount_in,
				amount_out = EXCLUDED.amount_out,
				reserve1_after = EXCLUDED.reserve1_after,
				reserve2_after = EXCLUDED.reserve2_after,
				event_ts = EXCLUDED.event_ts,
				applied_at = EXCLUDED.applied_at
		`,
			poolName,
			int64(event.Seq),
			event.Kind,
			event.Account,
			event.Amount1,
			event.Amount2,
			event.Shares,
			event.Direction,
			event.AmountIn,
			event.AmountOut,
			event.Reserve1After,
			event.Reserve2After,
			int64(event.Timestamp),
			event.AppliedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPoolState writes the pool snapshot and replaces its holder table.
func (s *Store) UpsertPoolState(ctx context.Context, state model.PoolState) error {
	if state.Name == "" {
		return fmt.Errorf("pool name required")
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO pools (
			name, asset1, asset2, reserve1, reserve2, total_shares, last_seq, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,now(),now())
		ON CONFLICT (name)
		DO UPDATE SET
			asset1 = EXCLUDED.asset1,
			asset2 = EXCLUDED.asset2,
			reserve1 = EXCLUDED.reserve1,
			reserve2 = EXCLUDED.reserve2,
			total_shares = EXCLUDED.total_shares,
			last_seq = EXCLUDED.last_seq,
			updated_at = now()
	`,
		state.Name,
		state.Asset1,
		state.Asset2,
		state.Reserve1,
		state.Reserve2,
		state.TotalShares,
		int64(state.LastSeq),
	)

	batch.Queue(`DELETE FROM holder_shares WHERE pool_name = $1`, state.Name)
	for _, holder := range state.Holders {
		batch.Queue(`
			INSERT INTO holder_shares (pool_name, address, shares, updated_at)
			VALUES ($1, $2, $3, now())
		`, state.Name, holder.Address, holder.Shares)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns last_applied_seq for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var seq uint64
	row := s.pool.QueryRow(ctx, `SELECT last_applied_seq FROM replay_state WHERE name=$1`, name)
	if err := row.Scan(&seq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return seq, true, nil
}

// SaveState upserts last_applied_seq for a name.
func (s *Store) SaveState(ctx context.Context, name string, seq uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO replay_state (name, last_applied_seq, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_applied_seq = EXCLUDED.last_applied_seq, updated_at = now()
	`, name, seq)
	return err
}

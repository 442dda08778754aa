package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ammcore/internal/model"
	"ammcore/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS pool_state (
	name TEXT PRIMARY KEY,
	token_x TEXT NOT NULL,
	token_y TEXT NOT NULL,
	custody TEXT NOT NULL,
	reserve_x NUMERIC(78, 0) NOT NULL,
	reserve_y NUMERIC(78, 0) NOT NULL,
	total_shares NUMERIC(78, 0) NOT NULL,
	total_fees_x NUMERIC(78, 0) NOT NULL,
	total_fees_y NUMERIC(78, 0) NOT NULL,
	fee_recipient TEXT NOT NULL DEFAULT '',
	height BIGINT NOT NULL,
	sequence BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS pool_shares (
	name TEXT NOT NULL,
	account TEXT NOT NULL,
	shares NUMERIC(78, 0) NOT NULL,
	PRIMARY KEY (name, account)
);
CREATE TABLE IF NOT EXISTS bank_balances (
	name TEXT NOT NULL,
	token TEXT NOT NULL,
	account TEXT NOT NULL,
	amount NUMERIC(78, 0) NOT NULL,
	PRIMARY KEY (name, token, account)
);
CREATE TABLE IF NOT EXISTS pool_events (
	tx_hash TEXT NOT NULL,
	log_index BIGINT NOT NULL,
	block_number BIGINT NOT NULL,
	address TEXT NOT NULL,
	topics TEXT[] NOT NULL,
	data TEXT NOT NULL,
	ingested_at TEXT NOT NULL,
	PRIMARY KEY (tx_hash, log_index)
);
CREATE TABLE IF NOT EXISTS pool_window_stats (
	pool_name TEXT NOT NULL,
	window_size BIGINT NOT NULL,
	window_start BIGINT NOT NULL,
	window_end BIGINT NOT NULL,
	swap_count BIGINT NOT NULL,
	volume_x NUMERIC(78, 0) NOT NULL,
	volume_y NUMERIC(78, 0) NOT NULL,
	fee_x NUMERIC(78, 0) NOT NULL,
	fee_y NUMERIC(78, 0) NOT NULL,
	add_count BIGINT NOT NULL,
	remove_count BIGINT NOT NULL,
	shares_minted NUMERIC(78, 0) NOT NULL,
	shares_burned NUMERIC(78, 0) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (pool_name, window_size, window_start)
);
`

// Store provides Postgres persistence for pool state, events and stats.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.EventSink = (*Store)(nil)

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

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutLogBatch inserts event logs, ignoring ones already stored.
func (s *Store) PutLogBatch(ctx context.Context, logs []model.LogRecord) error {
	if len(logs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, log := range logs {
		batch.Queue(`
			INSERT INTO pool_events (tx_hash, log_index, block_number, address, topics, data, ingested_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (tx_hash, log_index) DO NOTHING
		`,
			log.TxHash,
			int64(log.LogIndex),
			int64(log.BlockNumber),
			log.Address,
			log.Topics,
			log.Data,
			log.IngestedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range logs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertWindowStats inserts or updates window stats.
func (s *Store) UpsertWindowStats(ctx context.Context, stats []model.WindowStats) error {
	if len(stats) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, w := range stats {
		batch.Queue(`
			INSERT INTO pool_window_stats (
				pool_name, window_size, window_start, window_end, swap_count,
				volume_x, volume_y, fee_x, fee_y, add_count, remove_count,
				shares_minted, shares_burned, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6::numeric,$7::numeric,$8::numeric,$9::numeric,$10,$11,$12::numeric,$13::numeric,now(),now())
			ON CONFLICT (pool_name, window_size, window_start)
			DO UPDATE SET
				window_end = EXCLUDED.window_end,
				swap_count = EXCLUDED.swap_count,
				volume_x = EXCLUDED.volume_x,
				volume_y = EXCLUDED.volume_y,
				fee_x = EXCLUDED.fee_x,
				fee_y = EXCLUDED.fee_y,
				add_count = EXCLUDED.add_count,
				remove_count = EXCLUDED.remove_count,
				shares_minted = EXCLUDED.shares_minted,
				shares_burned = EXCLUDED.shares_burned,
				updated_at = now()
		`,
			w.PoolName,
			int64(w.WindowSize),
			int64(w.WindowStart),
			int64(w.WindowEnd),
			int64(w.SwapCount),
			w.VolumeX,
			w.VolumeY,
			w.FeeX,
			w.FeeY,
			int64(w.AddCount),
			int64(w.RemoveCount),
			w.SharesMinted,
			w.SharesBurned,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range stats {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState reads the named pool with its share and balance tables.
func (s *Store) LoadState(ctx context.Context, name string) (model.PoolState, bool, error) {
	if name == "" {
		return model.PoolState{}, false, fmt.Errorf("state name required")
	}

	st := model.PoolState{Name: name}
	var height, sequence int64
	row := s.pool.QueryRow(ctx, `
		SELECT token_x, token_y, custody, reserve_x::text, reserve_y::text, total_shares::text,
			total_fees_x::text, total_fees_y::text, fee_recipient, height, sequence,
			to_char(updated_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
		FROM pool_state WHERE name=$1
	`, name)
	if err := row.Scan(
		&st.TokenX, &st.TokenY, &st.Custody,
		&st.ReserveX, &st.ReserveY, &st.TotalShares,
		&st.TotalFeesX, &st.TotalFeesY, &st.FeeRecipient,
		&height, &sequence, &st.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PoolState{}, false, nil
		}
		return model.PoolState{}, false, err
	}
	st.Height = uint64(height)
	st.Sequence = uint64(sequence)

	rows, err := s.pool.Query(ctx, `SELECT account, shares::text FROM pool_shares WHERE name=$1`, name)
	if err != nil {
		return model.PoolState{}, false, fmt.Errorf("query shares: %w", err)
	}
	st.Shares = make(map[string]string)
	for rows.Next() {
		var account, shares string
		if err := rows.Scan(&account, &shares); err != nil {
			rows.Close()
			return model.PoolState{}, false, fmt.Errorf("scan shares: %w", err)
		}
		st.Shares[account] = shares
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return model.PoolState{}, false, fmt.Errorf("read shares: %w", err)
	}

	rows, err = s.pool.Query(ctx, `SELECT token, account, amount::text FROM bank_balances WHERE name=$1`, name)
	if err != nil {
		return model.PoolState{}, false, fmt.Errorf("query balances: %w", err)
	}
	defer rows.Close()
	st.Balances = make(map[string]map[string]string)
	for rows.Next() {
		var token, account, amount string
		if err := rows.Scan(&token, &account, &amount); err != nil {
			return model.PoolState{}, false, fmt.Errorf("scan balances: %w", err)
		}
		if st.Balances[token] == nil {
			st.Balances[token] = make(map[string]string)
		}
		st.Balances[token][account] = amount
	}
	if err := rows.Err(); err != nil {
		return model.PoolState{}, false, fmt.Errorf("read balances: %w", err)
	}
	return st, true, nil
}

// SaveState replaces the stored pool state in a single transaction.
func (s *Store) SaveState(ctx context.Context, st model.PoolState) error {
	if st.Name == "" {
		return fmt.Errorf("state name required")
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO pool_state (
				name, token_x, token_y, custody, reserve_x, reserve_y, total_shares,
				total_fees_x, total_fees_y, fee_recipient, height, sequence, updated_at
			) VALUES ($1,$2,$3,$4,$5::numeric,$6::numeric,$7::numeric,$8::numeric,$9::numeric,$10,$11,$12,now())
			ON CONFLICT (name) DO UPDATE SET
				token_x = EXCLUDED.token_x,
				token_y = EXCLUDED.token_y,
				custody = EXCLUDED.custody,
				reserve_x = EXCLUDED.reserve_x,
				reserve_y = EXCLUDED.reserve_y,
				total_shares = EXCLUDED.total_shares,
				total_fees_x = EXCLUDED.total_fees_x,
				total_fees_y = EXCLUDED.total_fees_y,
				fee_recipient = EXCLUDED.fee_recipient,
				height = EXCLUDED.height,
				sequence = EXCLUDED.sequence,
				updated_at = now()
		`,
			st.Name, st.TokenX, st.TokenY, st.Custody,
			orZero(st.ReserveX), orZero(st.ReserveY), orZero(st.TotalShares),
			orZero(st.TotalFeesX), orZero(st.TotalFeesY), st.FeeRecipient,
			int64(st.Height), int64(st.Sequence),
		); err != nil {
			return fmt.Errorf("upsert pool state: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM pool_shares WHERE name=$1`, st.Name); err != nil {
			return fmt.Errorf("clear shares: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM bank_balances WHERE name=$1`, st.Name); err != nil {
			return fmt.Errorf("clear balances: %w", err)
		}

		batch := &pgx.Batch{}
		for account, shares := range st.Shares {
			batch.Queue(`INSERT INTO pool_shares (name, account, shares) VALUES ($1, $2, $3::numeric)`, st.Name, account, shares)
		}
		for token, accounts := range st.Balances {
			for account, amount := range accounts {
				batch.Queue(`INSERT INTO bank_balances (name, token, account, amount) VALUES ($1, $2, $3, $4::numeric)`, st.Name, token, account, amount)
			}
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// StateStore adapts a Store to storage.StateStore for one named pool.
type StateStore struct {
	Store *Store
	Name  string
}

var _ storage.StateStore = (*StateStore)(nil)

func (s *StateStore) Load(ctx context.Context) (model.PoolState, bool, error) {
	if s == nil || s.Store == nil {
		return model.PoolState{}, false, nil
	}
	return s.Store.LoadState(ctx, s.Name)
}

func (s *StateStore) Save(ctx context.Context, st model.PoolState) error {
	if s == nil || s.Store == nil {
		return nil
	}
	st.Name = s.Name
	return s.Store.SaveState(ctx, st)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

package metadata

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/hackpredict/sdk-go/core/types"
)

const marketsSchema = `
CREATE TABLE IF NOT EXISTS market_metadata (
	contract_address TEXT PRIMARY KEY,
	creator_account  TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	category         TEXT NOT NULL DEFAULT '',
	tags             TEXT[] NOT NULL DEFAULT '{}',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to dsn and ensures the metadata schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to postgres")
	}
	if _, err := pool.Exec(ctx, marketsSchema); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ensuring market_metadata schema")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) RegisterMarket(ctx context.Context, rec MarketRecord) error {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO market_metadata (contract_address, creator_account, description, category, tags)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (contract_address) DO NOTHING`,
		string(rec.ContractAddress), string(rec.CreatorAccount),
		rec.Description, rec.Category, tags)
	return errors.Wrapf(err, "registering market %s", rec.ContractAddress)
}

func (s *PostgresStore) GetMarket(ctx context.Context, address types.ContractAddress) (*MarketRecord, error) {
	rec := &MarketRecord{ContractAddress: address}
	var creator string
	err := s.pool.QueryRow(ctx, `
		SELECT creator_account, description, category, tags, created_at
		FROM market_metadata WHERE contract_address = $1`,
		string(address)).
		Scan(&creator, &rec.Description, &rec.Category, &rec.Tags, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "market %s", address)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading metadata for market %s", address)
	}
	rec.CreatorAccount = types.AccountID(creator)
	return rec, nil
}

func (s *PostgresStore) Close() { s.pool.Close() }

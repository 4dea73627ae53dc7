// Package metadata persists off-chain market metadata: descriptions,
// categories, and tags that have no on-ledger representation. Registration is
// best-effort by contract; a metadata write failure never fails a market
// creation.
package metadata

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/hackpredict/sdk-go/core/types"
)

// ErrNotFound is returned when a market has no registered metadata.
var ErrNotFound = errors.New("market metadata not found")

// MarketRecord is the off-chain side of a market: everything the contract
// does not store.
type MarketRecord struct {
	ContractAddress types.ContractAddress
	CreatorAccount  types.AccountID
	Description     string
	Category        string
	Tags            []string
	CreatedAt       time.Time
}

// Store persists market metadata keyed by contract address.
type Store interface {
	// RegisterMarket records a newly created market. Registering the same
	// address twice is a no-op, not an error: creation may be retried after
	// a poll timeout even though the first attempt landed.
	RegisterMarket(ctx context.Context, rec MarketRecord) error

	// GetMarket returns a market's metadata, or ErrNotFound.
	GetMarket(ctx context.Context, address types.ContractAddress) (*MarketRecord, error)

	Close()
}

package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// CreateMarketInput describes a new parimutuel market. OutcomeIDs and
// OutcomeTitles are parallel slices: one title per bettable livestream.
// Description, Category, and Tags are off-chain metadata registered
// best-effort after a successful creation.
type CreateMarketInput struct {
	Question      string   `validate:"required"`
	OutcomeIDs    []uint64 `json:"outcome_ids"`
	OutcomeTitles []string `json:"outcome_titles"`
	Description   string
	Category      string
	Tags          []string
}

// Validate checks arity and basic shape without touching the network.
func (in *CreateMarketInput) Validate() error {
	if in.Question == "" {
		return fmt.Errorf("question is required")
	}
	if len(in.OutcomeIDs) != len(in.OutcomeTitles) {
		return errors.Wrapf(ErrArityMismatch, "%d ids vs %d titles",
			len(in.OutcomeIDs), len(in.OutcomeTitles))
	}
	for i, id := range in.OutcomeIDs {
		if id == 0 {
			return fmt.Errorf("outcome id at position %d must be non-zero", i)
		}
	}
	return nil
}

// PlaceBetInput is a stake on one outcome of a market. DisplayAmount is a
// human-readable decimal string converted to minimal units before any
// network traffic.
type PlaceBetInput struct {
	Market        ContractAddress `validate:"required"`
	OutcomeID     uint64          `validate:"required"`
	DisplayAmount string          `validate:"required"`
}

func (in *PlaceBetInput) Validate() error {
	if in.Market == "" {
		return fmt.Errorf("market address is required")
	}
	if in.OutcomeID == 0 {
		return fmt.Errorf("outcome id must be non-zero")
	}
	if in.DisplayAmount == "" {
		return errors.Wrap(ErrInvalidAmount, "amount is required")
	}
	return nil
}

// ListMarketsInput pages through the factory's market registry.
type ListMarketsInput struct {
	Offset uint32
	Limit  uint32
}

func (in *ListMarketsInput) Validate() error {
	if in.Limit == 0 {
		return fmt.Errorf("limit must be positive")
	}
	return nil
}

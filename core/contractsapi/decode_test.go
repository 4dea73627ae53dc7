package contractsapi

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackpredict/sdk-go/core/ledger"
	"github.com/hackpredict/sdk-go/core/types"
)

func marketInfoTuple() ledger.Val {
	return ledger.VecVal(
		ledger.U64VecVal([]uint64{101, 102, 103}),
		ledger.StringVal("Which stream hits 10k first?"),
		ledger.U32Val(uint32(types.MarketResolved)),
		ledger.U64Val(102),
		ledger.I128Val(uint256.NewInt(350_000_000)),
		ledger.U64Val(12),
	)
}

func TestDecodeMarketInfo(t *testing.T) {
	info, err := DecodeMarketInfo(marketInfoTuple())
	require.NoError(t, err)

	assert.Equal(t, []uint64{101, 102, 103}, info.OutcomeIDs)
	assert.Equal(t, "Which stream hits 10k first?", info.Question)
	assert.Equal(t, types.MarketResolved, info.State)
	assert.Equal(t, uint64(102), info.WinningOutcomeID)
	assert.Equal(t, uint64(350_000_000), info.TotalPool.Uint64())
	assert.Equal(t, uint64(12), info.TotalBettors)
}

func TestDecodeMarketInfoRejectsMalformedTuples(t *testing.T) {
	tests := []struct {
		name string
		val  ledger.Val
	}{
		{name: "not a tuple", val: ledger.U64Val(1)},
		{name: "truncated", val: ledger.VecVal(ledger.U64VecVal([]uint64{101}), ledger.StringVal("q"))},
		{
			name: "state out of range",
			val: ledger.VecVal(
				ledger.U64VecVal([]uint64{101}),
				ledger.StringVal("q"),
				ledger.U32Val(9),
				ledger.U64Val(0),
				ledger.I128Val(uint256.NewInt(0)),
				ledger.U64Val(0),
			),
		},
		{
			name: "question has wrong type",
			val: ledger.VecVal(
				ledger.U64VecVal([]uint64{101}),
				ledger.U64Val(7),
				ledger.U32Val(0),
				ledger.U64Val(0),
				ledger.I128Val(uint256.NewInt(0)),
				ledger.U64Val(0),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMarketInfo(tt.val)
			require.Error(t, err)
		})
	}
}

func TestDecodeOutcomeBets(t *testing.T) {
	summary, err := DecodeOutcomeBets(ledger.VecVal(
		ledger.I128Val(uint256.NewInt(105_000_000)),
		ledger.U64Val(30),
		ledger.BoolVal(true),
	), 101)
	require.NoError(t, err)

	assert.Equal(t, uint64(101), summary.OutcomeID)
	assert.Equal(t, uint64(105_000_000), summary.PooledAmount.Uint64())
	assert.True(t, summary.IsActive)
}

func TestDecodeStake(t *testing.T) {
	stake, err := DecodeStake(ledger.I128Val(uint256.NewInt(42)))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), stake.Uint64())

	// a nil i128 reads as zero, not as an error
	stake, err = DecodeStake(ledger.Val{Type: ledger.TypeI128})
	require.NoError(t, err)
	assert.True(t, stake.IsZero())

	_, err = DecodeStake(ledger.StringVal("not a stake"))
	require.Error(t, err)
}

func TestDecodeCreatedMarketAddress(t *testing.T) {
	addr, err := DecodeCreatedMarketAddress(ledger.AddressVal(string(testMarketAddr)))
	require.NoError(t, err)
	assert.Equal(t, testMarketAddr, addr)

	_, err = DecodeCreatedMarketAddress(ledger.U64Val(1))
	require.ErrorIs(t, err, types.ErrAddressParseFailed)

	_, err = DecodeCreatedMarketAddress(ledger.AddressVal("not-an-address"))
	require.ErrorIs(t, err, types.ErrAddressParseFailed)
}

func TestDecodeAddressList(t *testing.T) {
	list, err := DecodeAddressList(ledger.VecVal(
		ledger.AddressVal(string(testMarketAddr)),
		ledger.AddressVal(string(testFactoryAddr)),
	))
	require.NoError(t, err)
	assert.Equal(t, []types.ContractAddress{testMarketAddr, testFactoryAddr}, list)

	empty, err := DecodeAddressList(ledger.VecVal())
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = DecodeAddressList(ledger.VecVal(ledger.U64Val(1)))
	require.Error(t, err)
}

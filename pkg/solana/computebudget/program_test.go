package compute_budget

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudget_Instructions(t *testing.T) {
	assert.Empty(t, Budget{}.Instructions())

	ixns := Budget{UnitLimit: 200_000, UnitPrice: 1_000}.Instructions()
	require.Len(t, ixns, 2)

	for _, ixn := range ixns {
		assert.Equal(t, "ComputeBudget111111111111111111111111111111", base58.Encode(ixn.Program))
		assert.Empty(t, ixn.Accounts)
	}

	limit, err := ParseSetComputeUnitLimitIxnData(ixns[0].Data)
	require.NoError(t, err)
	assert.EqualValues(t, 200_000, limit)

	price, err := ParseSetComputeUnitPriceIxnData(ixns[1].Data)
	require.NoError(t, err)
	assert.EqualValues(t, 1_000, price)

	_, err = ParseSetComputeUnitLimitIxnData(ixns[1].Data)
	assert.Error(t, err)

	only := Budget{UnitPrice: 5}.Instructions()
	require.Len(t, only, 1)
	assert.Equal(t, commandSetComputeUnitPrice, only[0].Data[0])
}

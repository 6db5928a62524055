package syrup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolAccount_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 5)

	expected := PoolAccount{
		Version:      1,
		PoolDelegate: keys[0],
		Globals:      keys[1],
		BaseMint:     keys[2],
		Locker:       keys[3],
		SharesMint:   keys[4],
		Nonce:        [8]byte{1, 2, 3, 4, 5, 6, 7, 8},
		Bump:         254,
	}

	data, err := expected.Marshal()
	require.NoError(t, err)
	require.Len(t, data, MinPoolAccountSize)
	assert.Equal(t, []byte{241, 154, 109, 4, 17, 177, 109, 188}, data[:8])

	// Trailing pool configuration and state are ignored
	data = append(data, make([]byte, 300)...)

	var actual PoolAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, actual)

	assert.Equal(t, ErrInvalidAccountData, actual.Unmarshal(data[:MinPoolAccountSize-1]))

	lender := LenderAccount{Owner: keys[0], Pool: keys[1], LockedShares: keys[2], LenderShares: keys[3]}
	lenderData, err := lender.Marshal()
	require.NoError(t, err)
	assert.Equal(t, ErrInvalidAccountData, actual.Unmarshal(append(lenderData, make([]byte, MinPoolAccountSize)...)))
}

func TestLenderAccount_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 4)

	expected := LenderAccount{
		Version:      1,
		Owner:        keys[0],
		Pool:         keys[1],
		LockedShares: keys[2],
		LenderShares: keys[3],
		Bump:         255,
	}

	data, err := expected.Marshal()
	require.NoError(t, err)
	require.Len(t, data, LenderAccountSize)
	assert.Equal(t, []byte{107, 30, 175, 31, 232, 82, 180, 124}, data[:8])

	var actual LenderAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, actual)

	data[0] ^= 0xff
	assert.Equal(t, ErrInvalidAccountData, actual.Unmarshal(data))
}

func TestGlobalsAccount_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 1)

	expected := GlobalsAccount{Version: 1, ProtocolAdmin: keys[0], Bump: 250}

	data, err := expected.Marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{213, 113, 249, 94, 150, 230, 41, 235}, data[:8])

	var actual GlobalsAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, actual)

	assert.Equal(t, ErrInvalidAccountData, actual.Unmarshal(nil))
}

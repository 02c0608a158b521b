package evm

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrollup/evmstore/store"
	"github.com/openrollup/evmstore/store/memory"
	"github.com/openrollup/evmstore/types"
)

func newTestObject(to *common.Address, input []byte) *types.TransactionObject {
	return &types.TransactionObject{
		From:     common.HexToAddress("0x1111111111111111111111111111111111111111"),
		GasUsed:  uint256.NewInt(21000),
		GasPrice: uint256.NewInt(1_000_000_000),
		Hash:     testTxHash,
		Input:    input,
		Nonce:    uint256.NewInt(5),
		To:       to,
		Index:    3,
		Value:    uint256.NewInt(1_000_000),
		V:        uint256.NewInt(27),
		R:        common.HexToHash("0x0a"),
		S:        common.HexToHash("0x0b"),
	}
}

func TestTransactionObjectRoundTrip(t *testing.T) {
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")

	testCases := []struct {
		name   string
		object *types.TransactionObject
	}{
		{"with recipient", newTestObject(&to, []byte{0xde, 0xad})},
		{"contract creation", newTestObject(nil, []byte{0x60, 0x60, 0x60})},
		{"empty input", newTestObject(&to, nil)},
		{"large input", newTestObject(&to, make([]byte, store.MaxValueChunkSize*2+9))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			host := memory.NewStore()
			blockHash := common.HexToHash("0xb10c")
			blockNumber := uint256.NewInt(77)

			require.NoError(t, StoreTransactionObject(host, blockHash, blockNumber, tc.object))

			loaded, err := ReadTransactionObject(host, tc.object.Hash)
			require.NoError(t, err)

			assert.Equal(t, tc.object.From, loaded.From)
			assert.Equal(t, tc.object.GasUsed, loaded.GasUsed)
			assert.Equal(t, tc.object.GasPrice, loaded.GasPrice)
			assert.Equal(t, tc.object.Hash, loaded.Hash)
			assert.Equal(t, tc.object.Nonce, loaded.Nonce)
			assert.Equal(t, tc.object.To, loaded.To)
			assert.Equal(t, tc.object.Index, loaded.Index)
			assert.Equal(t, tc.object.Value, loaded.Value)
			assert.Equal(t, tc.object.V, loaded.V)
			assert.Equal(t, tc.object.R, loaded.R)
			assert.Equal(t, tc.object.S, loaded.S)

			if len(tc.object.Input) == 0 {
				assert.Empty(t, loaded.Input)
			} else {
				assert.Equal(t, tc.object.Input, loaded.Input)
			}
		})
	}
}

func TestTransactionObjectFieldLayout(t *testing.T) {
	host := memory.NewStore()
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	object := newTestObject(&to, []byte{1})

	require.NoError(t, StoreTransactionObject(host, common.HexToHash("0xb10c"), uint256.NewInt(77), object))

	objectPath, err := ObjectPath(object.Hash)
	require.NoError(t, err)

	// every field sits in its own child path
	for _, key := range []string{
		"block_hash", "block_number", "from", "gas_used", "gas_price",
		"input", "nonce", "to", "index", "value", "v", "r", "s",
	} {
		fieldPath, err := objectPath.Join(key)
		require.NoError(t, err)

		vt, err := host.HasValue(fieldPath)
		require.NoError(t, err)
		assert.True(t, vt.HasValue(), "missing object field %v", key)
	}

	// the hash child stays reserved, the subtree key already carries it
	hashPath, err := objectPath.Join("hash")
	require.NoError(t, err)

	vt, err := host.HasValue(hashPath)
	require.NoError(t, err)
	assert.Equal(t, store.ValueAbsent, vt)
}

func TestContractCreationLeavesToAbsent(t *testing.T) {
	host := memory.NewStore()
	object := newTestObject(nil, nil)

	require.NoError(t, StoreTransactionObject(host, common.HexToHash("0xb10c"), uint256.NewInt(1), object))

	objectPath, err := ObjectPath(object.Hash)
	require.NoError(t, err)

	toPath, err := objectPath.Join("to")
	require.NoError(t, err)

	vt, err := host.HasValue(toPath)
	require.NoError(t, err)
	assert.Equal(t, store.ValueAbsent, vt)
}

func TestStoreTransactionObjects(t *testing.T) {
	host := memory.NewStore()
	block := newTestBlock(5, 0)

	to := common.HexToAddress("0x2222222222222222222222222222222222222222")

	first := newTestObject(&to, nil)
	first.Hash = common.HexToHash("0x01")

	second := newTestObject(nil, nil)
	second.Hash = common.HexToHash("0x02")

	require.NoError(t, StoreTransactionObjects(host, block, []*types.TransactionObject{first, second}))

	for _, hash := range []common.Hash{first.Hash, second.Hash} {
		loaded, err := ReadTransactionObject(host, hash)
		require.NoError(t, err)
		assert.Equal(t, hash, loaded.Hash)
	}
}

func TestReadAbsentTransactionObject(t *testing.T) {
	host := memory.NewStore()

	_, err := ReadTransactionObject(host, testTxHash)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

package evm

import (
	"encoding/binary"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrollup/evmstore/store"
	"github.com/openrollup/evmstore/store/memory"
	"github.com/openrollup/evmstore/types"
)

func newTestBlock(number uint64, txnCount int) *types.L2Block {
	transactions := make([]common.Hash, 0, txnCount)
	for i := 0; i < txnCount; i++ {
		transactions = append(transactions, common.BytesToHash([]byte{byte(i + 1)}))
	}

	return types.NewL2Block(
		uint256.NewInt(number),
		common.BytesToHash([]byte{0xbb, byte(number)}),
		transactions,
	)
}

func TestBlockRoundTrip(t *testing.T) {
	testCases := []struct {
		name     string
		txnCount int
	}{
		{"empty transaction list", 0},
		{"single transaction", 1},
		{"several transactions", 5},
		{"full block", MaxTransactionsPerBlock},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			host := memory.NewStore()
			block := newTestBlock(42, tc.txnCount)

			require.NoError(t, StoreBlockByNumber(host, block))

			loaded, err := ReadBlock(host, block.Number)
			require.NoError(t, err)

			assert.Equal(t, block.Number, loaded.Number)
			assert.Equal(t, block.Hash, loaded.Hash)
			assert.Equal(t, block.Transactions, loaded.Transactions)
		})
	}
}

func TestCurrentBlockIndirection(t *testing.T) {
	host := memory.NewStore()
	block := newTestBlock(7, 3)

	require.NoError(t, StoreCurrentBlock(host, block))

	number, err := ReadCurrentBlockNumber(host)
	require.NoError(t, err)
	assert.Equal(t, block.Number, number)

	current, err := ReadCurrentBlock(host)
	require.NoError(t, err)
	assert.Equal(t, block.Number, current.Number)
	assert.Equal(t, block.Hash, current.Hash)
	assert.Equal(t, block.Transactions, current.Transactions)

	// the full block stays retrievable through its numbered path on its own
	byNumber, err := ReadBlock(host, block.Number)
	require.NoError(t, err)
	assert.Equal(t, block.Transactions, byNumber.Transactions)
}

func TestCurrentBlockPointerHoldsOnlyNumber(t *testing.T) {
	host := memory.NewStore()
	require.NoError(t, StoreCurrentBlock(host, newTestBlock(9, 2)))

	// the pointer subtree must not duplicate hash or transactions
	for _, key := range []string{blockHashKey, blockTransactionsKey} {
		path, err := evmCurrentBlockPath.Join(key)
		require.NoError(t, err)

		vt, err := host.HasValue(path)
		require.NoError(t, err)
		assert.Equal(t, store.ValueAbsent, vt, "unexpected %v under current pointer", key)
	}
}

func TestReadCurrentBlockNumberLegacyWidth(t *testing.T) {
	host := memory.NewStore()
	path, err := evmCurrentBlockPath.Join(blockNumberKey)
	require.NoError(t, err)

	// 8-byte little-endian pointers written by older deployments still load
	legacy := make([]byte, 8)
	binary.LittleEndian.PutUint64(legacy, 123456)
	require.NoError(t, host.WriteValue(path, 0, legacy))

	number, err := ReadCurrentBlockNumber(host)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(123456), number)
}

func TestReadCurrentBlockNumberWrongWidth(t *testing.T) {
	host := memory.NewStore()
	path, err := evmCurrentBlockPath.Join(blockNumberKey)
	require.NoError(t, err)

	require.NoError(t, host.WriteValue(path, 0, []byte{1, 2, 3}))

	_, err = ReadCurrentBlockNumber(host)

	var loadErr *InvalidLoadValueError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, WordSize, loadErr.Expected)
	assert.Equal(t, 3, loadErr.Actual)
}

func TestReadCurrentBlockSurfacesPointerError(t *testing.T) {
	host := memory.NewStore()

	_, err := ReadCurrentBlock(host)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReadBlockTransactionsDiscardsPartialStride(t *testing.T) {
	host := memory.NewStore()
	block := newTestBlock(3, 2)
	require.NoError(t, StoreBlockByNumber(host, block))

	blockPath, err := BlockPath(block.Number)
	require.NoError(t, err)

	txnsPath, err := blockPath.Join(blockTransactionsKey)
	require.NoError(t, err)

	// append half a hash of garbage behind the two full strides
	require.NoError(t, host.WriteValue(txnsPath, 2*HashSize, make([]byte, HashSize/2)))

	loaded, err := ReadBlock(host, block.Number)
	require.NoError(t, err)
	assert.Equal(t, block.Transactions, loaded.Transactions)
}

func TestSmartRollupAddressRoundTrip(t *testing.T) {
	host := memory.NewStore()
	address := common.HexToAddress("0x00112233445566778899aabbccddeeff00112233")

	require.NoError(t, StoreSmartRollupAddress(host, address))

	loaded, err := ReadSmartRollupAddress(host)
	require.NoError(t, err)
	assert.Equal(t, address, loaded)
}

func TestStoreSimulationResult(t *testing.T) {
	host := memory.NewStore()

	// nil result writes nothing at all
	require.NoError(t, StoreSimulationResult(host, nil))

	vt, err := host.HasValue(simulationResultPath)
	require.NoError(t, err)
	assert.Equal(t, store.ValueAbsent, vt)

	require.NoError(t, StoreSimulationResult(host, []byte{0xca, 0xfe}))

	data, err := host.ReadValue(simulationResultPath, 0, 16)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xca, 0xfe}, data)
}

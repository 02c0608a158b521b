package evm

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrollup/evmstore/store"
	"github.com/openrollup/evmstore/store/memory"
	"github.com/openrollup/evmstore/types"
)

func newTestReceipt(status types.TransactionStatus) *types.TransactionReceipt {
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")

	return &types.TransactionReceipt{
		Hash:              testTxHash,
		Index:             1,
		BlockHash:         common.HexToHash("0xb10c"),
		BlockNumber:       uint256.NewInt(99),
		From:              common.HexToAddress("0x1111111111111111111111111111111111111111"),
		To:                &to,
		CumulativeGasUsed: uint256.NewInt(42000),
		EffectiveGasPrice: uint256.NewInt(1_000_000_000),
		GasUsed:           uint256.NewInt(21000),
		Type:              types.TypeEip1559,
		Status:            status,
	}
}

func TestReceiptRoundTrip(t *testing.T) {
	host := memory.NewStore()
	receipt := newTestReceipt(types.StatusSuccess)

	require.NoError(t, StoreTransactionReceipt(host, receipt))

	loaded, err := ReadTransactionReceipt(host, receipt.Hash)
	require.NoError(t, err)
	assert.Equal(t, receipt, loaded)
}

func TestReceiptContractCreation(t *testing.T) {
	host := memory.NewStore()

	contract := common.HexToAddress("0x3333333333333333333333333333333333333333")
	receipt := newTestReceipt(types.StatusSuccess)
	receipt.To = nil
	receipt.ContractAddress = &contract

	require.NoError(t, StoreTransactionReceipt(host, receipt))

	loaded, err := ReadTransactionReceipt(host, receipt.Hash)
	require.NoError(t, err)
	assert.Nil(t, loaded.To)
	assert.Equal(t, &contract, loaded.ContractAddress)
}

func TestReceiptProjections(t *testing.T) {
	host := memory.NewStore()
	receipt := newTestReceipt(types.StatusFailure)

	require.NoError(t, StoreTransactionReceipt(host, receipt))

	status, err := ReadTransactionReceiptStatus(host, receipt.Hash)
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailure, status)

	gasUsed, err := ReadTransactionReceiptCumulativeGasUsed(host, receipt.Hash)
	require.NoError(t, err)
	assert.Equal(t, receipt.CumulativeGasUsed, gasUsed)
}

func TestStoreTransactionReceipts(t *testing.T) {
	host := memory.NewStore()

	first := newTestReceipt(types.StatusSuccess)
	first.Hash = common.HexToHash("0x01")

	second := newTestReceipt(types.StatusFailure)
	second.Hash = common.HexToHash("0x02")

	require.NoError(t, StoreTransactionReceipts(host, []*types.TransactionReceipt{first, second}))

	for _, expected := range []*types.TransactionReceipt{first, second} {
		loaded, err := ReadTransactionReceipt(host, expected.Hash)
		require.NoError(t, err)
		assert.Equal(t, expected, loaded)
	}
}

func TestReadAbsentReceipt(t *testing.T) {
	host := memory.NewStore()

	_, err := ReadTransactionReceipt(host, testTxHash)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReceiptCache(t *testing.T) {
	host := memory.NewStore()
	receipt := newTestReceipt(types.StatusSuccess)
	require.NoError(t, StoreTransactionReceipt(host, receipt))

	cache := NewReceiptCache(host, 16, time.Minute)

	loaded, err := cache.Receipt(receipt.Hash)
	require.NoError(t, err)
	assert.Equal(t, receipt, loaded)

	// served from cache even after the stored blob disappears
	receiptPath, err := ReceiptPath(receipt.Hash)
	require.NoError(t, err)
	require.NoError(t, host.DeleteValue(receiptPath))

	cached, err := cache.Receipt(receipt.Hash)
	require.NoError(t, err)
	assert.Equal(t, receipt, cached)

	status, err := cache.Status(receipt.Hash)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, status)

	// misses surface the store error unchanged
	_, err = cache.Receipt(common.HexToHash("0xffff"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

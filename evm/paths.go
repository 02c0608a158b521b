package evm

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/openrollup/evmstore/store"
)

// The fixed storage namespace. These paths are part of the deployment's wire
// format and must stay stable across versions.
var (
	smartRollupAddressPath  = store.MustPath("/metadata/smart_rollup_address")
	evmCurrentBlockPath     = store.MustPath("/evm/blocks/current")
	evmBlocksPath           = store.MustPath("/evm/blocks")
	evmReceiptsPath         = store.MustPath("/evm/transactions_receipts")
	evmObjectsPath          = store.MustPath("/evm/transactions_objects")
	chunkedTransactionsPath = store.MustPath("/chunked_transactions")
	simulationResultPath    = store.MustPath("/simulation_result")
)

const (
	blockNumberKey       = "number"
	blockHashKey         = "hash"
	blockTransactionsKey = "transactions"

	numChunksKey = "num_chunks"
)

func hashHex(hash common.Hash) string {
	return common.Bytes2Hex(hash[:])
}

// BlockPath locates the block stored under the given number.
func BlockPath(number *uint256.Int) (store.Path, error) {
	return evmBlocksPath.Join(number.Dec())
}

// ReceiptPath locates the receipt blob of the given transaction.
func ReceiptPath(txHash common.Hash) (store.Path, error) {
	return evmReceiptsPath.Join(hashHex(txHash))
}

// ObjectPath locates the object subtree of the given transaction.
func ObjectPath(txHash common.Hash) (store.Path, error) {
	return evmObjectsPath.Join(hashHex(txHash))
}

// ChunkedTransactionPath locates the reassembly subtree of the given
// transaction while its payload is still being delivered.
func ChunkedTransactionPath(txHash common.Hash) (store.Path, error) {
	return chunkedTransactionsPath.Join(hashHex(txHash))
}

func chunkedTransactionNumChunksPath(chunkedTxPath store.Path) (store.Path, error) {
	return chunkedTxPath.Join(numChunksKey)
}

func transactionChunkPath(chunkedTxPath store.Path, index uint16) (store.Path, error) {
	return chunkedTxPath.Join(strconv.FormatUint(uint64(index), 10))
}

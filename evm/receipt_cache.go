package evm

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openrollup/evmstore/store"
	"github.com/openrollup/evmstore/types"
	"github.com/openrollup/evmstore/util"
)

// ReceiptCache is a read-through cache over receipt lookups. Receipts are
// written once and never mutated, so cached entries can only go stale by
// expiring.
type ReceiptCache struct {
	host  store.Host
	inner *util.ExpirableLruCache
}

func NewReceiptCache(host store.Host, size int, ttl time.Duration) *ReceiptCache {
	return &ReceiptCache{
		host:  host,
		inner: util.NewExpirableLruCache(size, ttl),
	}
}

// Receipt returns the receipt of the given transaction, loading it from the
// durable store on a cache miss.
func (rc *ReceiptCache) Receipt(txHash common.Hash) (*types.TransactionReceipt, error) {
	value, err := rc.inner.GetOrUpdate(txHash, func() (interface{}, error) {
		return ReadTransactionReceipt(rc.host, txHash)
	})
	if err != nil {
		return nil, err
	}

	return value.(*types.TransactionReceipt), nil
}

// Status returns the execution status of the given transaction through the cache.
func (rc *ReceiptCache) Status(txHash common.Hash) (types.TransactionStatus, error) {
	receipt, err := rc.Receipt(txHash)
	if err != nil {
		return types.StatusFailure, err
	}

	return receipt.Status, nil
}

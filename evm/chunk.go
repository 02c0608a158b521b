package evm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/openrollup/evmstore/metrics"
	"github.com/openrollup/evmstore/store"
)

// Transaction payloads arrive as bounded-size chunks delivered in any
// order. While a transaction is incomplete its received chunks live
// under a per-hash subtree, keyed by decimal chunk index next to the
// num_chunks metadata child. No explicit received set is kept: membership is
// the existence of the chunk's child path, and completeness is derived from
// the subkey count.
//
// The final chunk is never persisted. The subtree is complete as soon as
// subkeys >= num_chunks, i.e. the metadata child plus all chunks but one,
// and the missing chunk is taken from the call that completes the
// transaction.

// CreateChunkedTransaction opens the reassembly subtree for the transaction
// by writing its expected chunk count. It must be called before any chunk of
// that transaction is stored.
func CreateChunkedTransaction(host store.Host, txHash common.Hash, numChunks uint16) error {
	chunkedTxPath, err := ChunkedTransactionPath(txHash)
	if err != nil {
		return err
	}

	numChunksPath, err := chunkedTransactionNumChunksPath(chunkedTxPath)
	if err != nil {
		return err
	}

	return writeU16(host, numChunksPath, numChunks)
}

func chunkedTransactionNumChunksByPath(host store.Host, chunkedTxPath store.Path) (uint16, error) {
	numChunksPath, err := chunkedTransactionNumChunksPath(chunkedTxPath)
	if err != nil {
		return 0, err
	}

	return readU16(host, numChunksPath)
}

// ChunkedTransactionNumChunks returns the expected chunk count of an open
// chunked transaction. Failing to read it means the transaction was never
// created.
func ChunkedTransactionNumChunks(host store.Host, txHash common.Hash) (uint16, error) {
	chunkedTxPath, err := ChunkedTransactionPath(txHash)
	if err != nil {
		return 0, err
	}

	return chunkedTransactionNumChunksByPath(host, chunkedTxPath)
}

func isTransactionComplete(host store.Host, chunkedTxPath store.Path, numChunks uint16) (bool, error) {
	subkeys, err := host.SubkeyCount(chunkedTxPath)
	if err != nil {
		return false, err
	}

	// The num_chunks child occupies one subkey slot, so all chunks but the
	// in-memory final one are present once subkeys reaches numChunks.
	return subkeys >= int(numChunks), nil
}

// storeTransactionChunkData persists one chunk payload, splitting it into
// exactly two writes when it exceeds the store's single-value cap. A chunk
// that already holds a value is left untouched so redelivery is harmless.
func storeTransactionChunkData(host store.Host, chunkPath store.Path, data []byte) error {
	valueType, err := host.HasValue(chunkPath)
	if err != nil {
		return err
	}

	if valueType.HasValue() {
		return nil
	}

	if len(data) > store.MaxValueChunkSize {
		// Chunks come from bounded inbox messages, so one split is enough.
		if err := host.WriteValue(chunkPath, 0, data[:store.MaxValueChunkSize]); err != nil {
			return err
		}

		return host.WriteValue(chunkPath, store.MaxValueChunkSize, data[store.MaxValueChunkSize:])
	}

	return host.WriteValue(chunkPath, 0, data)
}

func readTransactionChunkData(host store.Host, chunkPath store.Path) ([]byte, error) {
	size, err := host.ValueSize(chunkPath)
	if err != nil {
		return nil, err
	}

	if size <= store.MaxValueChunkSize {
		return host.ReadValue(chunkPath, 0, store.MaxValueChunkSize)
	}

	data, err := host.ReadValue(chunkPath, 0, store.MaxValueChunkSize)
	if err != nil {
		return nil, err
	}

	rest, err := host.ReadValue(chunkPath, store.MaxValueChunkSize, store.MaxValueChunkSize)
	if err != nil {
		return nil, err
	}

	return append(data, rest...), nil
}

// getFullTransaction walks every chunk index in order and concatenates their
// stored payloads. Any index whose child path does not exist takes the
// in-call payload instead; by protocol contract exactly one index is absent
// when the transaction is complete.
func getFullTransaction(
	host store.Host, chunkedTxPath store.Path, numChunks uint16, missingData []byte,
) ([]byte, error) {
	var payload []byte
	for index := uint16(0); index < numChunks; index++ {
		chunkPath, err := transactionChunkPath(chunkedTxPath, index)
		if err != nil {
			return nil, err
		}

		valueType, err := host.HasValue(chunkPath)
		if err != nil {
			return nil, err
		}

		if valueType == store.ValueAbsent {
			payload = append(payload, missingData...)
			continue
		}

		data, err := readTransactionChunkData(host, chunkPath)
		if err != nil {
			return nil, err
		}

		payload = append(payload, data...)
	}

	return payload, nil
}

// StoreTransactionChunk ingests one delivered chunk of an open chunked
// transaction. If the chunk is the last missing one, the reassembled full
// payload is returned with completed set, and the whole per-hash subtree is
// dropped; otherwise the chunk is persisted idempotently and the caller is
// told the transaction is still incomplete.
func StoreTransactionChunk(
	host store.Host, txHash common.Hash, index uint16, data []byte,
) (payload []byte, completed bool, err error) {
	metrics.GetOrRegisterMeter("evmstore/chunk/ingest").Mark(1)

	chunkedTxPath, err := ChunkedTransactionPath(txHash)
	if err != nil {
		return nil, false, err
	}

	numChunks, err := chunkedTransactionNumChunksByPath(host, chunkedTxPath)
	if err != nil {
		return nil, false, errors.WithMessage(err, "chunked transaction not created")
	}

	complete, err := isTransactionComplete(host, chunkedTxPath, numChunks)
	if err != nil {
		return nil, false, err
	}

	if !complete {
		chunkPath, err := transactionChunkPath(chunkedTxPath, index)
		if err != nil {
			return nil, false, err
		}

		return nil, false, storeTransactionChunkData(host, chunkPath, data)
	}

	payload, err = getFullTransaction(host, chunkedTxPath, numChunks, data)
	if err != nil {
		return nil, false, err
	}

	if err := host.DeleteValue(chunkedTxPath); err != nil {
		return nil, false, err
	}

	metrics.GetOrRegisterMeter("evmstore/chunk/complete").Mark(1)

	return payload, true, nil
}

// RemoveChunkedTransaction drops the reassembly subtree of an abandoned
// transaction, independent of the completion path.
func RemoveChunkedTransaction(host store.Host, txHash common.Hash) error {
	chunkedTxPath, err := ChunkedTransactionPath(txHash)
	if err != nil {
		return err
	}

	return host.DeleteValue(chunkedTxPath)
}

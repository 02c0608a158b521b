package evm

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/openrollup/evmstore/metrics"
	"github.com/openrollup/evmstore/store"
	"github.com/openrollup/evmstore/types"
)

func storeBlockNumber(host store.Host, blockPath store.Path, number *uint256.Int) error {
	path, err := blockPath.Join(blockNumberKey)
	if err != nil {
		return err
	}

	return writeU256(host, path, number)
}

func storeBlockHash(host store.Host, blockPath store.Path, hash common.Hash) error {
	path, err := blockPath.Join(blockHashKey)
	if err != nil {
		return err
	}

	return host.WriteValue(path, 0, hash[:])
}

// storeBlockTransactions writes the hash list as concatenated 32 byte
// strides. Rewriting a block with fewer transactions does not shrink the
// stored value, so stale trailing hashes from a longer previous list would
// survive; block paths are written once per number, never rewritten shorter.
func storeBlockTransactions(host store.Host, blockPath store.Path, transactions []common.Hash) error {
	path, err := blockPath.Join(blockTransactionsKey)
	if err != nil {
		return err
	}

	concat := make([]byte, 0, len(transactions)*HashSize)
	for _, txHash := range transactions {
		concat = append(concat, txHash[:]...)
	}

	return store.WriteAll(host, path, concat)
}

func storeBlock(host store.Host, block *types.L2Block, blockPath store.Path) error {
	if err := storeBlockNumber(host, blockPath, block.Number); err != nil {
		return errors.WithMessage(err, "failed to store block number")
	}

	if err := storeBlockHash(host, blockPath, block.Hash); err != nil {
		return errors.WithMessage(err, "failed to store block hash")
	}

	return errors.WithMessage(
		storeBlockTransactions(host, blockPath, block.Transactions),
		"failed to store block transactions",
	)
}

// StoreBlockByNumber persists the block under its numbered path.
func StoreBlockByNumber(host store.Host, block *types.L2Block) error {
	blockPath, err := BlockPath(block.Number)
	if err != nil {
		return err
	}

	return storeBlock(host, block, blockPath)
}

func storeCurrentBlockNoLog(host store.Host, block *types.L2Block) error {
	// Only the block number goes under the current pointer, the full block
	// is always persisted under its numbered path to avoid duplicates.
	if err := storeBlockNumber(host, evmCurrentBlockPath, block.Number); err != nil {
		return errors.WithMessage(err, "failed to store current block number")
	}

	return StoreBlockByNumber(host, block)
}

// StoreCurrentBlock persists the block under its numbered path and advances
// the current block pointer to it.
func StoreCurrentBlock(host store.Host, block *types.L2Block) error {
	updater := metrics.NewTimerUpdater(metrics.GetOrRegisterTimer("evmstore/block/current/store"))
	defer updater.Update()

	err := storeCurrentBlockNoLog(host, block)

	logger := currentBlockLogger(block.Hash, block.Number, len(block.Transactions))
	if err != nil {
		logger.WithError(err).Debug("Block storing failed")
	} else {
		logger.Debug("Stored current block")
	}

	return err
}

// ReadCurrentBlockNumber loads the current block pointer. Both the 32-byte
// pointer format and the 8-byte legacy one are accepted, any other stored
// width is a decode error.
func ReadCurrentBlockNumber(host store.Host) (*uint256.Int, error) {
	path, err := evmCurrentBlockPath.Join(blockNumberKey)
	if err != nil {
		return nil, err
	}

	size, err := host.ValueSize(path)
	if err != nil {
		return nil, err
	}

	switch size {
	case WordSize:
		return readU256(host, path)
	case legacyBlockNumberSize:
		data, err := readSlice(host, path, legacyBlockNumberSize)
		if err != nil {
			return nil, err
		}

		return uint256.NewInt(binary.LittleEndian.Uint64(data)), nil
	default:
		return nil, &InvalidLoadValueError{Expected: WordSize, Actual: size}
	}
}

func readBlockTransactions(host store.Host, blockPath store.Path) ([]common.Hash, error) {
	path, err := blockPath.Join(blockTransactionsKey)
	if err != nil {
		return nil, err
	}

	data, err := readEmptySafe(host, path, maxBlockTransactionsSize)
	if err != nil {
		return nil, err
	}

	// A trailing stride shorter than a full hash is discarded rather than
	// surfaced, tolerating partially written state.
	transactions := make([]common.Hash, 0, len(data)/HashSize)
	for offset := 0; offset+HashSize <= len(data); offset += HashSize {
		transactions = append(transactions, common.BytesToHash(data[offset:offset+HashSize]))
	}

	return transactions, nil
}

// ReadBlock loads the full block stored under the given number.
func ReadBlock(host store.Host, number *uint256.Int) (*types.L2Block, error) {
	blockPath, err := BlockPath(number)
	if err != nil {
		return nil, err
	}

	numberPath, err := blockPath.Join(blockNumberKey)
	if err != nil {
		return nil, err
	}

	storedNumber, err := readU256(host, numberPath)
	if err != nil {
		return nil, err
	}

	hashPath, err := blockPath.Join(blockHashKey)
	if err != nil {
		return nil, err
	}

	hash, err := readHash(host, hashPath)
	if err != nil {
		return nil, err
	}

	transactions, err := readBlockTransactions(host, blockPath)
	if err != nil {
		return nil, err
	}

	return types.NewL2Block(storedNumber, hash, transactions), nil
}

func readCurrentBlockNoLog(host store.Host) (*types.L2Block, error) {
	number, err := ReadCurrentBlockNumber(host)
	if err != nil {
		return nil, err
	}

	return ReadBlock(host, number)
}

// ReadCurrentBlock resolves the current block pointer to its full block.
func ReadCurrentBlock(host store.Host) (*types.L2Block, error) {
	updater := metrics.NewTimerUpdater(metrics.GetOrRegisterTimer("evmstore/block/current/read"))
	defer updater.Update()

	block, err := readCurrentBlockNoLog(host)
	if err != nil {
		logrus.WithError(err).Debug("Block reading failed")
		return nil, err
	}

	currentBlockLogger(block.Hash, block.Number, len(block.Transactions)).Debug("Read current block")

	return block, nil
}

func currentBlockLogger(hash common.Hash, number *uint256.Int, txnCount int) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"hash":     hashHex(hash),
		"number":   number.Dec(),
		"txnCount": txnCount,
	})
}

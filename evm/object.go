package evm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/openrollup/evmstore/store"
	"github.com/openrollup/evmstore/types"
)

// Per-field children of a transaction object subtree. The "hash" child is
// reserved in the namespace but never written, the subtree is already keyed
// by the transaction hash.
const (
	objectBlockHashKey   = "block_hash"
	objectBlockNumberKey = "block_number"
	objectFromKey        = "from"
	objectGasUsedKey     = "gas_used"
	objectGasPriceKey    = "gas_price"
	objectInputKey       = "input"
	objectNonceKey       = "nonce"
	objectToKey          = "to"
	objectIndexKey       = "index"
	objectValueKey       = "value"
	objectVKey           = "v"
	objectRKey           = "r"
	objectSKey           = "s"
)

func writeObjectBytes(host store.Host, objectPath store.Path, key string, data []byte) error {
	path, err := objectPath.Join(key)
	if err != nil {
		return err
	}

	return errors.WithMessagef(host.WriteValue(path, 0, data), "failed to store tx object field %v", key)
}

func writeObjectU256(host store.Host, objectPath store.Path, key string, value *uint256.Int) error {
	path, err := objectPath.Join(key)
	if err != nil {
		return err
	}

	return errors.WithMessagef(writeU256(host, path, value), "failed to store tx object field %v", key)
}

// StoreTransactionObject persists every field of the object as its own child
// beneath the object path. The write sequence is not atomic as a whole; any
// step failure aborts the remainder and leaves a partial object behind.
func StoreTransactionObject(
	host store.Host, blockHash common.Hash, blockNumber *uint256.Int, object *types.TransactionObject,
) error {
	objectPath, err := ObjectPath(object.Hash)
	if err != nil {
		return err
	}

	if err := writeObjectBytes(host, objectPath, objectBlockHashKey, blockHash[:]); err != nil {
		return err
	}

	if err := writeObjectU256(host, objectPath, objectBlockNumberKey, blockNumber); err != nil {
		return err
	}

	if err := writeObjectBytes(host, objectPath, objectFromKey, object.From[:]); err != nil {
		return err
	}

	if err := writeObjectU256(host, objectPath, objectGasUsedKey, object.GasUsed); err != nil {
		return err
	}

	if err := writeObjectU256(host, objectPath, objectGasPriceKey, object.GasPrice); err != nil {
		return err
	}

	inputPath, err := objectPath.Join(objectInputKey)
	if err != nil {
		return err
	}

	if err := store.WriteAll(host, inputPath, object.Input); err != nil {
		return errors.WithMessage(err, "failed to store tx object input")
	}

	if err := writeObjectU256(host, objectPath, objectNonceKey, object.Nonce); err != nil {
		return err
	}

	// Contract creations have no recipient and leave the child absent.
	if object.To != nil {
		if err := writeObjectBytes(host, objectPath, objectToKey, object.To[:]); err != nil {
			return err
		}
	}

	indexPath, err := objectPath.Join(objectIndexKey)
	if err != nil {
		return err
	}

	if err := writeU16(host, indexPath, object.Index); err != nil {
		return errors.WithMessage(err, "failed to store tx object index")
	}

	if err := writeObjectU256(host, objectPath, objectValueKey, object.Value); err != nil {
		return err
	}

	if err := writeObjectU256(host, objectPath, objectVKey, object.V); err != nil {
		return err
	}

	if err := writeObjectBytes(host, objectPath, objectRKey, object.R[:]); err != nil {
		return err
	}

	return writeObjectBytes(host, objectPath, objectSKey, object.S[:])
}

// StoreTransactionObjects persists the objects of every transaction included
// in the given block.
func StoreTransactionObjects(host store.Host, block *types.L2Block, objects []*types.TransactionObject) error {
	for _, object := range objects {
		if err := StoreTransactionObject(host, block.Hash, block.Number, object); err != nil {
			return err
		}
	}

	return nil
}

func readObjectU256(host store.Host, objectPath store.Path, key string) (*uint256.Int, error) {
	path, err := objectPath.Join(key)
	if err != nil {
		return nil, err
	}

	return readU256(host, path)
}

// ReadTransactionObject loads back a stored transaction object, mainly for
// verification callers and the inspect tooling.
func ReadTransactionObject(host store.Host, txHash common.Hash) (*types.TransactionObject, error) {
	objectPath, err := ObjectPath(txHash)
	if err != nil {
		return nil, err
	}

	object := &types.TransactionObject{Hash: txHash}

	fromPath, err := objectPath.Join(objectFromKey)
	if err != nil {
		return nil, err
	}

	if object.From, err = readAddress(host, fromPath); err != nil {
		return nil, err
	}

	if object.GasUsed, err = readObjectU256(host, objectPath, objectGasUsedKey); err != nil {
		return nil, err
	}

	if object.GasPrice, err = readObjectU256(host, objectPath, objectGasPriceKey); err != nil {
		return nil, err
	}

	inputPath, err := objectPath.Join(objectInputKey)
	if err != nil {
		return nil, err
	}

	if object.Input, err = store.ReadAll(host, inputPath); err != nil {
		return nil, err
	}

	if object.Nonce, err = readObjectU256(host, objectPath, objectNonceKey); err != nil {
		return nil, err
	}

	toPath, err := objectPath.Join(objectToKey)
	if err != nil {
		return nil, err
	}

	toType, err := host.HasValue(toPath)
	if err != nil {
		return nil, err
	}

	if toType.HasValue() {
		to, err := readAddress(host, toPath)
		if err != nil {
			return nil, err
		}

		object.To = &to
	}

	indexPath, err := objectPath.Join(objectIndexKey)
	if err != nil {
		return nil, err
	}

	if object.Index, err = readU16(host, indexPath); err != nil {
		return nil, err
	}

	if object.Value, err = readObjectU256(host, objectPath, objectValueKey); err != nil {
		return nil, err
	}

	if object.V, err = readObjectU256(host, objectPath, objectVKey); err != nil {
		return nil, err
	}

	rPath, err := objectPath.Join(objectRKey)
	if err != nil {
		return nil, err
	}

	if object.R, err = readHash(host, rPath); err != nil {
		return nil, err
	}

	sPath, err := objectPath.Join(objectSKey)
	if err != nil {
		return nil, err
	}

	if object.S, err = readHash(host, sPath); err != nil {
		return nil, err
	}

	return object, nil
}

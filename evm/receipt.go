package evm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/openrollup/evmstore/store"
	"github.com/openrollup/evmstore/types"
)

// StoreTransactionReceipt persists the receipt as one RLP blob under the
// receipts namespace.
func StoreTransactionReceipt(host store.Host, receipt *types.TransactionReceipt) error {
	data, err := rlp.EncodeToBytes(receipt)
	if err != nil {
		return errors.WithMessage(err, "failed to RLP encode receipt")
	}

	receiptPath, err := ReceiptPath(receipt.Hash)
	if err != nil {
		return err
	}

	return store.WriteAll(host, receiptPath, data)
}

// StoreTransactionReceipts persists a batch of receipts, stopping at the
// first failure.
func StoreTransactionReceipts(host store.Host, receipts []*types.TransactionReceipt) error {
	for _, receipt := range receipts {
		if err := StoreTransactionReceipt(host, receipt); err != nil {
			return err
		}
	}

	return nil
}

// ReadTransactionReceipt loads and decodes the receipt of the given transaction.
func ReadTransactionReceipt(host store.Host, txHash common.Hash) (*types.TransactionReceipt, error) {
	receiptPath, err := ReceiptPath(txHash)
	if err != nil {
		return nil, err
	}

	data, err := store.ReadAll(host, receiptPath)
	if err != nil {
		return nil, err
	}

	var receipt types.TransactionReceipt
	if err := rlp.DecodeBytes(data, &receipt); err != nil {
		return nil, errors.WithMessage(err, "failed to RLP decode receipt")
	}

	return &receipt, nil
}

// ReadTransactionReceiptStatus projects the execution status out of the
// stored receipt.
func ReadTransactionReceiptStatus(host store.Host, txHash common.Hash) (types.TransactionStatus, error) {
	receipt, err := ReadTransactionReceipt(host, txHash)
	if err != nil {
		return types.StatusFailure, err
	}

	return receipt.Status, nil
}

// ReadTransactionReceiptCumulativeGasUsed projects the cumulative gas used
// out of the stored receipt.
func ReadTransactionReceiptCumulativeGasUsed(host store.Host, txHash common.Hash) (*uint256.Int, error) {
	receipt, err := ReadTransactionReceipt(host, txHash)
	if err != nil {
		return nil, err
	}

	return receipt.CumulativeGasUsed, nil
}

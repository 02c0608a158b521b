package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// TransactionStatus is the execution outcome recorded in a receipt.
type TransactionStatus uint8

const (
	StatusFailure TransactionStatus = iota
	StatusSuccess
)

// TransactionType distinguishes the transaction envelope formats.
type TransactionType uint8

const (
	TypeLegacy TransactionType = iota
	TypeEip2930
	TypeEip1559
)

// TransactionReceipt is persisted as a single opaque RLP blob under the
// transaction receipts namespace; storage never inspects individual fields.
// Optional addresses RLP encode as empty strings when nil.
type TransactionReceipt struct {
	Hash              common.Hash
	Index             uint16
	BlockHash         common.Hash
	BlockNumber       *uint256.Int
	From              common.Address
	To                *common.Address `rlp:"nil"`
	CumulativeGasUsed *uint256.Int
	EffectiveGasPrice *uint256.Int
	GasUsed           *uint256.Int
	ContractAddress   *common.Address `rlp:"nil"`
	Type              TransactionType
	Status            TransactionStatus
}

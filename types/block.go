package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// L2Block is the minimal rollup block representation this layer persists:
// its number, its hash and the ordered hashes of the transactions it holds.
type L2Block struct {
	Number       *uint256.Int
	Hash         common.Hash
	Transactions []common.Hash
}

func NewL2Block(number *uint256.Int, hash common.Hash, transactions []common.Hash) *L2Block {
	return &L2Block{
		Number:       number,
		Hash:         hash,
		Transactions: transactions,
	}
}

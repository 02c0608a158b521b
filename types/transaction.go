package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// TransactionObject carries the per-transaction metadata persisted under the
// transaction objects namespace. The block it was included in is supplied
// separately when the object is stored. A nil To marks contract creation.
type TransactionObject struct {
	From     common.Address
	GasUsed  *uint256.Int
	GasPrice *uint256.Int
	Hash     common.Hash
	Input    []byte
	Nonce    *uint256.Int
	To       *common.Address
	Index    uint16
	Value    *uint256.Int
	V        *uint256.Int
	R        common.Hash
	S        common.Hash
}

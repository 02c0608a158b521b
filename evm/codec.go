package evm

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/openrollup/evmstore/store"
)

const (
	// AddressSize is the byte length of an account address.
	AddressSize = common.AddressLength
	// HashSize is the byte length of a 256 bit hash.
	HashSize = common.HashLength
	// WordSize is the byte length of one 256 bit word.
	WordSize = 32

	// Block number pointers written by older deployments are 8 bytes wide;
	// the read path accepts both widths.
	legacyBlockNumberSize = 8

	// MaxTransactionsPerBlock bounds the transaction hash list readable
	// from a single block, HashSize*128 = 4096 bytes.
	MaxTransactionsPerBlock = 128

	maxBlockTransactionsSize = HashSize * MaxTransactionsPerBlock
)

// InvalidLoadValueError is returned when a fixed-size read yields a value of
// a different length than contracted.
type InvalidLoadValueError struct {
	Expected int
	Actual   int
}

func (e *InvalidLoadValueError) Error() string {
	return fmt.Sprintf("invalid load value, expected %v bytes, got %v", e.Expected, e.Actual)
}

// readSlice loads exactly expected bytes from the start of the value at path.
func readSlice(host store.Host, path store.Path, expected int) ([]byte, error) {
	data, err := host.ReadValue(path, 0, expected)
	if err != nil {
		return nil, err
	}

	if len(data) != expected {
		return nil, &InvalidLoadValueError{Expected: expected, Actual: len(data)}
	}

	return data, nil
}

// readEmptySafe loads up to maxBytes from the value at path, tolerating a
// zero length value as an empty slice. Used for values whose emptiness is
// meaningful, e.g. a block without transactions.
func readEmptySafe(host store.Host, path store.Path, maxBytes int) ([]byte, error) {
	size, err := host.ValueSize(path)
	if err != nil {
		return nil, err
	}

	if size == 0 {
		return []byte{}, nil
	}

	if maxBytes > size {
		maxBytes = size
	}

	data := make([]byte, 0, maxBytes)
	for offset := 0; offset < maxBytes; offset += store.MaxValueChunkSize {
		chunkLen := maxBytes - offset
		if chunkLen > store.MaxValueChunkSize {
			chunkLen = store.MaxValueChunkSize
		}

		chunk, err := host.ReadValue(path, offset, chunkLen)
		if err != nil {
			return nil, err
		}

		data = append(data, chunk...)
	}

	return data, nil
}

func u256ToLeBytes(value *uint256.Int) []byte {
	data := make([]byte, WordSize)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(data[i*8:], value[i])
	}

	return data
}

func u256FromLeBytes(data []byte) *uint256.Int {
	var value uint256.Int
	for i := 0; i < 4; i++ {
		value[i] = binary.LittleEndian.Uint64(data[i*8:])
	}

	return &value
}

func readU256(host store.Host, path store.Path) (*uint256.Int, error) {
	data, err := readSlice(host, path, WordSize)
	if err != nil {
		return nil, err
	}

	return u256FromLeBytes(data), nil
}

func writeU256(host store.Host, path store.Path, value *uint256.Int) error {
	return host.WriteValue(path, 0, u256ToLeBytes(value))
}

func readHash(host store.Host, path store.Path) (common.Hash, error) {
	data, err := readSlice(host, path, HashSize)
	if err != nil {
		return common.Hash{}, err
	}

	return common.BytesToHash(data), nil
}

func readAddress(host store.Host, path store.Path) (common.Address, error) {
	data, err := readSlice(host, path, AddressSize)
	if err != nil {
		return common.Address{}, err
	}

	return common.BytesToAddress(data), nil
}

func readU16(host store.Host, path store.Path) (uint16, error) {
	data, err := readSlice(host, path, 2)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(data), nil
}

func writeU16(host store.Host, path store.Path, value uint16) error {
	data := make([]byte, 2)
	binary.LittleEndian.PutUint16(data, value)

	return host.WriteValue(path, 0, data)
}

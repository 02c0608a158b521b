package store

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// MaxValueChunkSize is the largest byte slice the durable store accepts for
// a single value read or write. Longer blobs must be split across multiple
// offset ranges, see WriteAll/ReadAll.
const MaxValueChunkSize = 2048

var (
	ErrNotFound          = errors.New("value not found")
	ErrInvalidAccess     = errors.New("invalid value access")
	ErrValueSizeExceeded = errors.New("value chunk size exceeded")
)

// ValueType describes what the durable store holds at a path.
type ValueType int

const (
	// ValueAbsent means nothing exists at the path.
	ValueAbsent ValueType = iota
	// ValueOnly means the path holds a value and has no children.
	ValueOnly
	// SubtreeOnly means the path holds no value but has children.
	SubtreeOnly
	// ValueWithSubtree means the path holds a value and has children.
	ValueWithSubtree
)

// HasValue indicates whether a value is stored directly at the path.
func (vt ValueType) HasValue() bool {
	return vt == ValueOnly || vt == ValueWithSubtree
}

// HasSubtree indicates whether the path has any direct children.
func (vt ValueType) HasSubtree() bool {
	return vt == SubtreeOnly || vt == ValueWithSubtree
}

// Host is the hierarchical durable key-value store this layer persists into.
// Implementations are expected to be safe for use from a single goroutine;
// a write is visible to any subsequent read within the same call sequence.
type Host interface {
	// ReadValue reads up to maxBytes bytes of the value at path starting
	// from offset. Reading an absent value fails with ErrNotFound, reading
	// past the end of an existing value fails with ErrInvalidAccess.
	ReadValue(path Path, offset, maxBytes int) ([]byte, error)

	// WriteValue writes data into the value at path starting from offset,
	// creating the value if absent. A data slice longer than
	// MaxValueChunkSize fails with ErrValueSizeExceeded; an offset beyond
	// the current value size fails with ErrInvalidAccess.
	WriteValue(path Path, offset int, data []byte) error

	// DeleteValue removes the whole subtree rooted at path, value and
	// children alike. Deleting an absent path fails with ErrNotFound.
	DeleteValue(path Path) error

	// HasValue reports what is stored at path.
	HasValue(path Path) (ValueType, error)

	// ValueSize returns the byte length of the value at path.
	ValueSize(path Path) (int, error)

	// SubkeyCount returns the number of direct children beneath path.
	SubkeyCount(path Path) (int, error)
}

// WriteAll persists a blob of arbitrary length under a single path by
// splitting it into MaxValueChunkSize slices written at increasing offsets.
// An empty blob still creates a zero length value so the path exists.
// Writes never truncate: rewriting a path with a shorter blob leaves the
// tail of the previous value in place, so callers that shrink a value must
// delete the path first or encode the length in the payload.
func WriteAll(host Host, path Path, data []byte) error {
	if len(data) == 0 {
		return host.WriteValue(path, 0, nil)
	}

	for offset := 0; offset < len(data); offset += MaxValueChunkSize {
		end := offset + MaxValueChunkSize
		if end > len(data) {
			end = len(data)
		}

		if err := host.WriteValue(path, offset, data[offset:end]); err != nil {
			return errors.WithMessagef(err, "failed to write value chunk at offset %v", offset)
		}
	}

	return nil
}

// ReadAll loads back a blob persisted with WriteAll, reading
// MaxValueChunkSize slices until the stored value size is exhausted.
func ReadAll(host Host, path Path) ([]byte, error) {
	size, err := host.ValueSize(path)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, size)
	for offset := 0; offset < size; offset += MaxValueChunkSize {
		maxBytes := size - offset
		if maxBytes > MaxValueChunkSize {
			maxBytes = MaxValueChunkSize
		}

		chunk, err := host.ReadValue(path, offset, maxBytes)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to read value chunk at offset %v", offset)
		}

		data = append(data, chunk...)
	}

	return data, nil
}

// CloseAll closes every non-nil closer and aggregates their errors.
func CloseAll(closers ...io.Closer) error {
	var err error
	for _, closer := range closers {
		if closer != nil {
			err = multierr.Append(err, closer.Close())
		}
	}

	return err
}

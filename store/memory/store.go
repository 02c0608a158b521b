package memory

import (
	"sync"

	"github.com/openrollup/evmstore/store"
)

type node struct {
	value    []byte
	hasValue bool
	children map[string]*node
}

func (n *node) child(segment string) *node {
	if n == nil || n.children == nil {
		return nil
	}

	return n.children[segment]
}

func (n *node) ensureChild(segment string) *node {
	if n.children == nil {
		n.children = make(map[string]*node)
	}

	child, ok := n.children[segment]
	if !ok {
		child = &node{}
		n.children[segment] = child
	}

	return child
}

// Store is an in-process durable store host backed by a plain node tree.
// It implements the reference semantics of the store contract and is the
// backend used throughout the test suites.
type Store struct {
	mu   sync.RWMutex
	root *node
}

var _ store.Host = (*Store)(nil)

func NewStore() *Store {
	return &Store{root: &node{}}
}

func (ms *Store) lookup(path store.Path) *node {
	current := ms.root
	for _, segment := range path.Segments() {
		if current = current.child(segment); current == nil {
			return nil
		}
	}

	return current
}

func (ms *Store) ReadValue(path store.Path, offset, maxBytes int) ([]byte, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	target := ms.lookup(path)
	if target == nil || !target.hasValue {
		return nil, store.ErrNotFound
	}

	if offset < 0 || maxBytes < 0 || offset > len(target.value) {
		return nil, store.ErrInvalidAccess
	}

	if maxBytes > store.MaxValueChunkSize {
		maxBytes = store.MaxValueChunkSize
	}

	end := offset + maxBytes
	if end > len(target.value) {
		end = len(target.value)
	}

	data := make([]byte, end-offset)
	copy(data, target.value[offset:end])

	return data, nil
}

func (ms *Store) WriteValue(path store.Path, offset int, data []byte) error {
	if len(data) > store.MaxValueChunkSize {
		return store.ErrValueSizeExceeded
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	// Validate the offset against the existing value before touching the
	// tree, so a rejected write never leaves phantom ancestor nodes behind.
	existing := 0
	if target := ms.lookup(path); target != nil {
		existing = len(target.value)
	}

	if offset < 0 || offset > existing {
		return store.ErrInvalidAccess
	}

	current := ms.root
	for _, segment := range path.Segments() {
		current = current.ensureChild(segment)
	}

	if end := offset + len(data); end > len(current.value) {
		grown := make([]byte, end)
		copy(grown, current.value)
		current.value = grown
	}

	copy(current.value[offset:], data)
	current.hasValue = true

	return nil
}

func (ms *Store) DeleteValue(path store.Path) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	segments := path.Segments()
	if len(segments) == 0 {
		ms.root = &node{}
		return nil
	}

	// Track the chain of traversed nodes so that interior nodes left behind
	// with neither value nor children can be pruned afterwards.
	chain := []*node{ms.root}
	current := ms.root
	for _, segment := range segments {
		if current = current.child(segment); current == nil {
			return store.ErrNotFound
		}

		chain = append(chain, current)
	}

	delete(chain[len(chain)-2].children, segments[len(segments)-1])

	for i := len(chain) - 2; i > 0; i-- {
		parent := chain[i]
		if parent.hasValue || len(parent.children) > 0 {
			break
		}

		delete(chain[i-1].children, segments[i-1])
	}

	return nil
}

func (ms *Store) HasValue(path store.Path) (store.ValueType, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	target := ms.lookup(path)

	switch {
	case target == nil:
		return store.ValueAbsent, nil
	case target.hasValue && len(target.children) > 0:
		return store.ValueWithSubtree, nil
	case target.hasValue:
		return store.ValueOnly, nil
	case len(target.children) > 0:
		return store.SubtreeOnly, nil
	default:
		return store.ValueAbsent, nil
	}
}

func (ms *Store) ValueSize(path store.Path) (int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	target := ms.lookup(path)
	if target == nil || !target.hasValue {
		return 0, store.ErrNotFound
	}

	return len(target.value), nil
}

func (ms *Store) SubkeyCount(path store.Path) (int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	target := ms.lookup(path)
	if target == nil {
		return 0, store.ErrNotFound
	}

	return len(target.children), nil
}

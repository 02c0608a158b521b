package leveldb

import (
	viperutil "github.com/Conflux-Chain/go-conflux-util/viper"
	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	ldbopt "github.com/syndtr/goleveldb/leveldb/opt"
	ldbutil "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/openrollup/evmstore/store"
)

// Every node value lives under a single flat key, the path string prefixed
// with 'v'. Interior nodes are implicit: a path has a subtree iff any value
// key exists strictly below it.
const valueKeyTag = 'v'

// Config holds the leveldb durable store configurations.
type Config struct {
	Path     string `default:"data/evmstore"`
	Readonly bool
	Enabled  bool
}

// MustNewConfigFromViper creates an instance of Config from Viper or panics on error.
func MustNewConfigFromViper() *Config {
	var cfg Config

	viperutil.MustUnmarshalKey("store.leveldb", &cfg)
	return &cfg
}

// Store is a durable store host persisted in a local leveldb database.
type Store struct {
	db *leveldb.DB
}

var _ store.Host = (*Store)(nil)

// MustOpen opens (or creates) the database at the configured path, or exits on error.
func (cfg *Config) MustOpen() *Store {
	db, err := leveldb.OpenFile(cfg.Path, &ldbopt.Options{ReadOnly: cfg.Readonly})
	if err != nil {
		logrus.WithError(err).WithField("path", cfg.Path).Fatal("Failed to open leveldb store")
	}

	return &Store{db: db}
}

func (ls *Store) Close() error {
	return ls.db.Close()
}

func valueKey(path store.Path) []byte {
	return append([]byte{valueKeyTag}, path.String()...)
}

func subtreePrefix(path store.Path) []byte {
	return append(valueKey(path), '/')
}

func (ls *Store) loadValue(path store.Path) ([]byte, error) {
	data, err := ls.db.Get(valueKey(path), nil)
	if err == leveldb.ErrNotFound {
		return nil, store.ErrNotFound
	}

	return data, err
}

func (ls *Store) ReadValue(path store.Path, offset, maxBytes int) ([]byte, error) {
	value, err := ls.loadValue(path)
	if err != nil {
		return nil, err
	}

	if offset < 0 || maxBytes < 0 || offset > len(value) {
		return nil, store.ErrInvalidAccess
	}

	if maxBytes > store.MaxValueChunkSize {
		maxBytes = store.MaxValueChunkSize
	}

	end := offset + maxBytes
	if end > len(value) {
		end = len(value)
	}

	return value[offset:end], nil
}

func (ls *Store) WriteValue(path store.Path, offset int, data []byte) error {
	if len(data) > store.MaxValueChunkSize {
		return store.ErrValueSizeExceeded
	}

	value, err := ls.loadValue(path)
	if err == store.ErrNotFound {
		value = nil
	} else if err != nil {
		return err
	}

	if offset < 0 || offset > len(value) {
		return store.ErrInvalidAccess
	}

	if end := offset + len(data); end > len(value) {
		grown := make([]byte, end)
		copy(grown, value)
		value = grown
	}

	copy(value[offset:], data)

	return ls.db.Put(valueKey(path), value, nil)
}

func (ls *Store) DeleteValue(path store.Path) error {
	batch := new(leveldb.Batch)

	hasValue, err := ls.db.Has(valueKey(path), nil)
	if err != nil {
		return err
	}

	if hasValue {
		batch.Delete(valueKey(path))
	}

	iter := ls.db.NewIterator(ldbutil.BytesPrefix(subtreePrefix(path)), nil)
	for iter.Next() {
		batch.Delete(append([]byte{}, iter.Key()...))
	}
	iter.Release()

	if err := iter.Error(); err != nil {
		return err
	}

	if batch.Len() == 0 {
		return store.ErrNotFound
	}

	return ls.db.Write(batch, nil)
}

func (ls *Store) HasValue(path store.Path) (store.ValueType, error) {
	hasValue, err := ls.db.Has(valueKey(path), nil)
	if err != nil {
		return store.ValueAbsent, err
	}

	iter := ls.db.NewIterator(ldbutil.BytesPrefix(subtreePrefix(path)), nil)
	hasSubtree := iter.Next()
	iter.Release()

	if err := iter.Error(); err != nil {
		return store.ValueAbsent, err
	}

	switch {
	case hasValue && hasSubtree:
		return store.ValueWithSubtree, nil
	case hasValue:
		return store.ValueOnly, nil
	case hasSubtree:
		return store.SubtreeOnly, nil
	default:
		return store.ValueAbsent, nil
	}
}

func (ls *Store) ValueSize(path store.Path) (int, error) {
	value, err := ls.loadValue(path)
	if err != nil {
		return 0, err
	}

	return len(value), nil
}

func (ls *Store) SubkeyCount(path store.Path) (int, error) {
	prefix := subtreePrefix(path)

	// Distinct first segments below the prefix are the direct children.
	// Children that hold no value of their own still surface here through
	// the value keys of their descendants.
	children := make(map[string]struct{})

	iter := ls.db.NewIterator(ldbutil.BytesPrefix(prefix), nil)
	for iter.Next() {
		segment := string(iter.Key()[len(prefix):])
		for i := 0; i < len(segment); i++ {
			if segment[i] == '/' {
				segment = segment[:i]
				break
			}
		}

		children[segment] = struct{}{}
	}
	iter.Release()

	if err := iter.Error(); err != nil {
		return 0, err
	}

	if len(children) == 0 {
		hasValue, err := ls.db.Has(valueKey(path), nil)
		if err != nil {
			return 0, err
		}

		if !hasValue {
			return 0, store.ErrNotFound
		}
	}

	return len(children), nil
}

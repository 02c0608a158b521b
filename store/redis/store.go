package redis

import (
	"context"

	viperutil "github.com/Conflux-Chain/go-conflux-util/viper"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/openrollup/evmstore/store"
)

// Node values are plain redis strings under "v:<path>"; the direct children
// of a node are tracked in a redis set under "c:<path>" so subkey counting
// is a single SCARD. Empty sets are reclaimed by redis itself.
const (
	valueKeyPrefix    = "v:"
	childrenKeyPrefix = "c:"
)

// Config holds the redis durable store configurations.
type Config struct {
	Enabled bool
	Url     string `default:"redis://127.0.0.1:6379/0"`
}

// Store is a durable store host shared through a redis instance, mainly
// used for development deployments where several processes inspect the
// same namespace.
type Store struct {
	ctx context.Context
	rdb *redis.Client
}

var _ store.Host = (*Store)(nil)

// MustNewFromViper creates a redis backed store from Viper or exits on
// error. The second return value is false if the backend is not enabled.
func MustNewFromViper() (*Store, bool) {
	var cfg Config
	viperutil.MustUnmarshalKey("store.redis", &cfg)

	if !cfg.Enabled {
		return nil, false
	}

	opt, err := redis.ParseURL(cfg.Url)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to parse redis store url")
	}

	rdb := redis.NewClient(opt)
	ctx := context.Background()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logrus.WithError(err).Fatal("Failed to ping redis store")
	}

	return New(ctx, rdb), true
}

func New(ctx context.Context, rdb *redis.Client) *Store {
	return &Store{ctx: ctx, rdb: rdb}
}

func (rs *Store) Close() error {
	return rs.rdb.Close()
}

func valueKey(path store.Path) string {
	return valueKeyPrefix + path.String()
}

func childrenKey(path store.Path) string {
	return childrenKeyPrefix + path.String()
}

func parentOf(path store.Path) (store.Path, string) {
	segments := path.Segments()

	parent := store.RootPath()
	for _, segment := range segments[:len(segments)-1] {
		parent, _ = parent.Join(segment)
	}

	return parent, segments[len(segments)-1]
}

// linkAncestors registers the path in the child set of each of its ancestors
// so that interior nodes are observable before they hold any value.
func (rs *Store) linkAncestors(path store.Path) error {
	current := store.RootPath()
	for _, segment := range path.Segments() {
		if err := rs.rdb.SAdd(rs.ctx, childrenKey(current), segment).Err(); err != nil {
			return err
		}

		current, _ = current.Join(segment)
	}

	return nil
}

// pruneAncestors removes the path from its parent's child set when it no
// longer exists, cascading upwards through emptied interior nodes.
func (rs *Store) pruneAncestors(path store.Path) error {
	for len(path.Segments()) > 0 {
		vt, err := rs.HasValue(path)
		if err != nil {
			return err
		}

		if vt != store.ValueAbsent {
			return nil
		}

		parent, segment := parentOf(path)
		if err := rs.rdb.SRem(rs.ctx, childrenKey(parent), segment).Err(); err != nil {
			return err
		}

		path = parent
	}

	return nil
}

func (rs *Store) loadValue(path store.Path) ([]byte, error) {
	data, err := rs.rdb.Get(rs.ctx, valueKey(path)).Bytes()
	if err == redis.Nil {
		return nil, store.ErrNotFound
	}

	return data, err
}

func (rs *Store) ReadValue(path store.Path, offset, maxBytes int) ([]byte, error) {
	value, err := rs.loadValue(path)
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

func (rs *Store) WriteValue(path store.Path, offset int, data []byte) error {
	if len(data) > store.MaxValueChunkSize {
		return store.ErrValueSizeExceeded
	}

	value, err := rs.loadValue(path)
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

	if err := rs.rdb.Set(rs.ctx, valueKey(path), value, 0).Err(); err != nil {
		return err
	}

	return rs.linkAncestors(path)
}

func (rs *Store) DeleteValue(path store.Path) error {
	vt, err := rs.HasValue(path)
	if err != nil {
		return err
	}

	if vt == store.ValueAbsent {
		return store.ErrNotFound
	}

	if err := rs.deleteSubtree(path); err != nil {
		return err
	}

	if len(path.Segments()) == 0 {
		return nil
	}

	parent, segment := parentOf(path)
	if err := rs.rdb.SRem(rs.ctx, childrenKey(parent), segment).Err(); err != nil {
		return err
	}

	return rs.pruneAncestors(parent)
}

func (rs *Store) deleteSubtree(path store.Path) error {
	segments, err := rs.rdb.SMembers(rs.ctx, childrenKey(path)).Result()
	if err != nil {
		return err
	}

	for _, segment := range segments {
		child, err := path.Join(segment)
		if err != nil {
			return err
		}

		if err := rs.deleteSubtree(child); err != nil {
			return err
		}
	}

	return rs.rdb.Del(rs.ctx, valueKey(path), childrenKey(path)).Err()
}

func (rs *Store) HasValue(path store.Path) (store.ValueType, error) {
	hasValue, err := rs.rdb.Exists(rs.ctx, valueKey(path)).Result()
	if err != nil {
		return store.ValueAbsent, err
	}

	childCount, err := rs.rdb.SCard(rs.ctx, childrenKey(path)).Result()
	if err != nil {
		return store.ValueAbsent, err
	}

	switch {
	case hasValue > 0 && childCount > 0:
		return store.ValueWithSubtree, nil
	case hasValue > 0:
		return store.ValueOnly, nil
	case childCount > 0:
		return store.SubtreeOnly, nil
	default:
		return store.ValueAbsent, nil
	}
}

func (rs *Store) ValueSize(path store.Path) (int, error) {
	exists, err := rs.rdb.Exists(rs.ctx, valueKey(path)).Result()
	if err != nil {
		return 0, err
	}

	if exists == 0 {
		return 0, store.ErrNotFound
	}

	size, err := rs.rdb.StrLen(rs.ctx, valueKey(path)).Result()
	return int(size), err
}

func (rs *Store) SubkeyCount(path store.Path) (int, error) {
	vt, err := rs.HasValue(path)
	if err != nil {
		return 0, err
	}

	if vt == store.ValueAbsent {
		return 0, store.ErrNotFound
	}

	count, err := rs.rdb.SCard(rs.ctx, childrenKey(path)).Result()
	return int(count), err
}

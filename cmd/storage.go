package cmd

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/openrollup/evmstore/store"
	"github.com/openrollup/evmstore/store/leveldb"
	"github.com/openrollup/evmstore/store/memory"
	"github.com/openrollup/evmstore/store/redis"
)

// mustOpenHost opens the durable store backend selected by the
// `store.backend` config item. The returned closer may be nil for backends
// without an underlying handle.
func mustOpenHost() (store.Host, io.Closer) {
	backend := viper.GetString("store.backend")

	switch backend {
	case "", "leveldb":
		ldb := leveldb.MustNewConfigFromViper().MustOpen()
		return ldb, ldb
	case "redis":
		rds, ok := redis.MustNewFromViper()
		if !ok {
			logrus.Fatal("Redis store backend selected but not enabled")
		}

		return rds, rds
	case "memory":
		return memory.NewStore(), nil
	default:
		logrus.WithField("backend", backend).Fatal("Unknown store backend")
		return nil, nil
	}
}

package config

import (
	"github.com/Conflux-Chain/go-conflux-util/config"
)

// Read system environment variables prefixed with "EVMSTORE".
// eg., `EVMSTORE_LOG_LEVEL` will override "log.level" config item from the
// config file.
const viperEnvPrefix = "evmstore"

func Init() {
	// init utilities eg., viper, metrics and logging
	config.MustInit(viperEnvPrefix)
}

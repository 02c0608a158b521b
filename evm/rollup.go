package evm

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/openrollup/evmstore/store"
)

// ReadSmartRollupAddress loads the 20-byte identity of this deployment.
func ReadSmartRollupAddress(host store.Host) (common.Address, error) {
	return readAddress(host, smartRollupAddressPath)
}

// StoreSmartRollupAddress persists the deployment identity.
func StoreSmartRollupAddress(host store.Host, address common.Address) error {
	return host.WriteValue(smartRollupAddressPath, 0, address[:])
}

// StoreSimulationResult persists the opaque simulation result blob. A nil
// result writes nothing at all.
func StoreSimulationResult(host store.Host, result []byte) error {
	if result == nil {
		return nil
	}

	return host.WriteValue(simulationResultPath, 0, result)
}

package config

import (
	"fmt"
	"runtime"
)

// Build metadata, injected at link time via -ldflags
// "-X github.com/openrollup/evmstore/config.Version=...".
var (
	Version   = "unknown"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// DumpVersionInfo prints the evmstore build metadata to stdout.
func DumpVersionInfo() {
	fmt.Printf("evmstore %v\n", Version)
	fmt.Printf("  git commit: %v\n", GitCommit)
	fmt.Printf("  build date: %v\n", BuildDate)
	fmt.Printf("  platform:   %v/%v\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  go version: %v\n", runtime.Version())
}

package main

import (
	"github.com/openrollup/evmstore/cmd"
	"github.com/openrollup/evmstore/config"
)

func main() {
	// ensure configuration initialized at first.
	config.Init()

	cmd.Execute()
}

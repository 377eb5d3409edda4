// Package main is the entry point for the storeflow gateway server.
package main

import (
	"os"

	"github.com/storeflow/gateway/cmd/storeflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main is the entry point for the storectl CLI.
package main

import (
	"github.com/storeflow/gateway/cmd/storectl/cmd"
)

func main() {
	cmd.Execute()
}

package main

import (
	"os"

	"github.com/paw-chain/pairpool/app"
	"github.com/paw-chain/pairpool/cmd/pairpoold/cmd"
)

func main() {
	app.SetAddressPrefixes()

	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main provides a one-shot utility for join-grant key generation.
//
// It emits the asymmetric keypair used by project join grant signing.
package main

import (
	"os"

	"github.com/vidmark/vidmark/internal/platform/config"
	"github.com/vidmark/vidmark/internal/tools/joingrant"
)

func main() {
	if err := joingrant.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate join grant key: %v", err)
	}
}

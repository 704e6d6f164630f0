// Command attriwatch-cli scores employee CSV files offline and builds
// categorical vocabularies for model manifests.
package main

import (
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Batch scored without row errors
	ExitPartial = 1 // Batch scored but some rows were rejected
	ExitError   = 2 // Configuration, input or model error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

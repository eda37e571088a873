// Command taxcalc computes federal income tax for return files and serves the
// tax return API.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

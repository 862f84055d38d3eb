// ABOUTME: Entry point for the tcg-binder CLI
// ABOUTME: Scan, browse, and manage a trading card collection from the terminal

package main

import (
	"fmt"
	"os"

	"github.com/markalston/tcg-binder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package main provides the pantry CLI, a command-line front end for the
// SQLite pasta store.
package main

import (
	"fmt"
	"os"
)

func main() {
	err := rootCmd.Execute()
	if cerr := closeLog(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "pantry:", err)
		os.Exit(exitCode(err))
	}
}

// Package main provides the chessinsight CLI for analyzing chess games and
// managing the evaluation database that backs engine scores.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

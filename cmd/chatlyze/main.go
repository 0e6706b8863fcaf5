// ChatLyze - Chat Export Analysis Tool
//
// ChatLyze parses exported chat histories and turns them into conversation
// statistics: per-participant counts, sentiment, activity patterns, and
// champions.
package main

import (
	"os"

	"github.com/iampreetdave-max/analyze-text/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

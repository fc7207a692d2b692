// buildsuggest turns a keyword frequency list into the trigram suggestion
// dictionary, either as a MySQL dump or straight into a real-time index.
package main

import (
	"os"

	"github.com/kailas-cloud/sphinxsuggest/cmd/buildsuggest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	ragnotescmder "github.com/papercomputeco/ragnotes/cmd/ragnotes"
)

func main() {
	cmd := ragnotescmder.NewRagnotesCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"log"

	"github.com/ByLCY/ellipsis/cmd"
)

var version = "dev"

func main() {
	cmd.SetVersion(version)
	if err := cmd.Execute(); err != nil {
		log.Fatalf("ellipsis: %v", err)
	}
}

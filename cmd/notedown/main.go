package main

import (
	"log"

	"github.com/halvard/notedown/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}

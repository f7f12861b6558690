package main

import (
	"os"

	"github.com/waybill-io/waybill/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

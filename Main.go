package main

import (
	"os"

	"github.com/moebelhaus/shop-backend/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

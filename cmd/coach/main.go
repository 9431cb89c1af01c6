package main

import (
	"log"

	"github.com/absmach/coach/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

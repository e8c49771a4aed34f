package main

import (
	"fmt"
	"os"

	"github.com/unkn0wn-root/reqtree/internal/errdef"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", errdef.Message(err))
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/mediaupload/internal/uploadctl"
)

func main() {
	if err := uploadctl.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

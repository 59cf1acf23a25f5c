package main

import (
	"fmt"
	"os"

	"echoscribe/cmd/a2t/cmd"
	"echoscribe/internal/config"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration warning: %v\n", err)
	}

	cmd.Execute()
}

package main

import (
	"fmt"
	"os"

	"github.com/rcliao/family-tree/internal/cli"
	"github.com/rcliao/family-tree/internal/logger"
)

func main() {
	err := cli.RootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

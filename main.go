package main

import (
	"os"

	"github.com/lucienvoid/ai-hr-agent/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

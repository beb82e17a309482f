package main

import (
	"os"

	"github.com/somilnegi/AI-Interview-Prep-App/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/awantoch/cvdfunctions/utils"
	"github.com/joho/godotenv"
)

var exit = os.Exit

func main() {
	// Load .env as early as possible!
	_ = godotenv.Load()

	rootCmd := NewRootCmd()
	err := rootCmd.Execute()
	utils.Sync()
	if err != nil {
		exit(1)
	}
}

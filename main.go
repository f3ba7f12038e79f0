package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := Execute(); err != nil {
		if IsFinalizeError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

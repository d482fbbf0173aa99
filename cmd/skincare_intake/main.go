// Package main provides the entry point for the skincare intake server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skincare_intake",
	Short: "Skincare recommendation intake",
	Long: "Collects an email, skin concerns and up to three photos, forwards them to a " +
		"recommendation webhook and renders the text reply as a formatted report.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

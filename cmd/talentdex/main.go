package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "talentdex",
	Short: "Semantic candidate matching",
	Long: `talentdex ranks stored candidate profiles against a free-text role query
and explains each match.

Configuration is read from config/<ENV>.yaml (ENV defaults to local).
A .env file in the working directory is loaded first.`,
	SilenceUsage: true,
}

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

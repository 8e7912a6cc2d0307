package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host  string
	token string
)

var rootCmd = &cobra.Command{
	Use:   "courtqueue-cli",
	Short: "A CLI to interact with the courtqueue server",
	Long: `A command-line interface for making requests to the various endpoints
of the courtqueue application. Mutating commands need a token from 'login',
passed with --token or the COURTQUEUE_TOKEN environment variable.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("COURTQUEUE_TOKEN"), "Admin token returned by login")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}

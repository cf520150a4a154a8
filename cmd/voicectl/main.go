// Command voicectl drives a running assistant over its HTTP API.
//
// Usage:
//
//	voicectl token --user alice
//	voicectl say "add milk to my list" --token $TOKEN
//	voicectl confirm --session <id> --token $TOKEN
//	voicectl execute create_task --param title=milk --token $TOKEN
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	authToken string
)

var rootCmd = &cobra.Command{
	Use:           "voicectl",
	Short:         "Command-line client for the voice assistant API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("VOX_SERVER", "http://localhost:8080"), "assistant base URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("VOX_TOKEN"), "bearer token (see `voicectl token`)")

	rootCmd.AddCommand(tokenCmd, sayCmd, confirmCmd, executeCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

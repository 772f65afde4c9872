// Package cmd contains the CLI commands for netwatchctl.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Used for flags
	verbose bool
	output  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "netwatchctl",
	Short: "netwatchctl - NetWatch administration tool",
	Long: `netwatchctl prepares configuration for netwatch-server and checks
threshold settings offline.

Examples:
  # Hash a dashboard password for the users section of the config
  netwatchctl hash-password

  # See how a sample would be classified
  netwatchctl classify "CPU Usage" 95

  # Mint a short-lived token for scripting against the API
  NETWATCH_JWT_SECRET=... netwatchctl token --username ops --role user

  # Issue TLS material and seal the config
  netwatchctl ca init --dir ./pki
  netwatchctl cert server --ca-dir ./pki --name api
  netwatchctl config seal netwatch.yaml`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (table, json)")
}

// GetOutput returns the output format.
func GetOutput() string {
	return output
}

// PrintVerbose prints a message to stderr only if verbose mode is enabled.
func PrintVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

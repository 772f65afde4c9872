package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/netwatch/pkg/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit, and build time of netwatchctl.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		info := buildinfo.Get()
		if GetOutput() == "json" {
			data, _ := json.MarshalIndent(info, "", "  ")
			fmt.Fprintln(out, string(data))
		} else {
			fmt.Fprintln(out, info.String("netwatchctl"))
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

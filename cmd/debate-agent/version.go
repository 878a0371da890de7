package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/debateprogram/realtime/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			data, _ := json.MarshalIndent(map[string]string{
				"version":   version.Version,
				"commit":    version.Commit,
				"buildTime": version.BuildTime,
			}, "", "  ")
			fmt.Println(string(data))
			return
		}
		fmt.Println("debate-agent " + version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

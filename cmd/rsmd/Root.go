package main

import "github.com/spf13/cobra"


var configPath string

var rootCmd = &cobra.Command{
	Use: "rsmd",
	Short: "runs a replicated service manager against a committed log",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file; defaults are used when omitted")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

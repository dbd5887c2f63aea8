package main

import "fmt"

import "github.com/spf13/cobra"


const Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use: "version",
	Short: "prints the rsmd version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(NAME, Version)
	},
}

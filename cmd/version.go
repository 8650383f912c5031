// File: cmd/version.go
package cmd

import "github.com/spf13/cobra"

// Version is set at build time:
//
//	go build -ldflags "-X github.com/xkilldash9x/scalpel-dom/cmd.Version=1.0.0"
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the scalpel-dom version.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Package cli implements the grok command tree.
package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/hutchisr/grok/internal/cli.version=1.2.3"
	version = "0.4.0"
	logo    = "\n" +
		"   __ _ _ __ ___ | | __\n" +
		"  / _` | '__/ _ \\| |/ /\n" +
		" | (_| | | | (_) |   <\n" +
		"  \\__, |_|  \\___/|_|\\_\\\n" +
		"  |___/\n"
)

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:   "grok",
	Short: "grok - Misskey conversation bot",
	Long:  color.CyanString(logo) + "\nA Misskey bot that answers mentions with an LLM-driven tool loop.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func printHeader(title string) {
	fmt.Println(color.CyanString(logo))
	if title != "" {
		fmt.Println(title)
		fmt.Println("─────────────────────")
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
}

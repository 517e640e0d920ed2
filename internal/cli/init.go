package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hutchisr/grok/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("⚙️ grok Init")

		path, err := config.ConfigPath()
		if err != nil {
			fmt.Printf("Config path error: %v\n", err)
			os.Exit(1)
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Println("Config already exists: " + path)
			return
		}

		cfg := config.DefaultConfig()
		// One placeholder endpoint so the file shows the expected shape.
		cfg.Model.ChatEndpoints = []config.Endpoint{
			{URL: "https://api.openai.com/v1", Key: "${OPENAI_API_KEY}", Model: "gpt-4o-mini"},
		}
		if err := config.Save(cfg); err != nil {
			fmt.Printf("Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Wrote " + path)
		fmt.Println("Fill in server.url, server.wsUrl, server.token and the bot identity, then run 'grok run'.")
	},
}

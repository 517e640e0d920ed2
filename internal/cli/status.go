package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hutchisr/grok/internal/config"
	"github.com/hutchisr/grok/internal/timeline"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ grok Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and recent activity",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 grok Status")
		fmt.Printf("Version: %s\n", version)

		configPath, err := config.ConfigPath()
		if err != nil {
			configPath = "(unknown)"
		}
		if _, err := os.Stat(configPath); err == nil {
			fmt.Println("Config:  ✓ Found (" + configPath + ")")
		} else {
			fmt.Println("Config:  ✗ Not found (" + configPath + ")")
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Config:  ? Invalid: %v\n", err)
			return
		}
		fmt.Println("Server:  " + cfg.Server.URL)
		fmt.Printf("Chat endpoints:   %d\n", len(cfg.Model.ChatEndpoints))
		fmt.Printf("Vision endpoints: %d\n", len(cfg.Model.VisionEndpoints))
		if cfg.Ledger.Enabled() {
			fmt.Println("Ledger:  ✓ " + cfg.Ledger.Addr)
		} else {
			fmt.Println("Ledger:  ✗ Disabled")
		}

		timeSvc, err := timeline.Open(timelinePath())
		if err != nil {
			fmt.Printf("Timeline: ? Unable to open: %v\n", err)
			return
		}
		defer timeSvc.Close()
		events, err := timeSvc.Recent(context.Background(), 10)
		if err != nil {
			fmt.Printf("Timeline: ? %v\n", err)
			return
		}
		fmt.Printf("\nRecent mentions (%d):\n", len(events))
		for _, e := range events {
			line := fmt.Sprintf("  %s  %-8s  %s  %s",
				e.CreatedAt.Format("2006-01-02 15:04:05"), e.Status, e.Username, e.NoteID)
			if e.Detail != "" {
				line += "  (" + e.Detail + ")"
			}
			fmt.Println(line)
		}
	},
}

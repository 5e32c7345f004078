package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/malexanderboyd/godr4ft/internal/config"
)

func main() {
	var configPath string
	root := &cobra.Command{
		Use:          "godr4ft",
		Short:        "Real-time booster draft server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path of the TOML config file")
	root.AddCommand(serveCmd(&configPath), checkListCmd(&configPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "pelorus",
	Short: "Pelorus - marine instrument data hub",
	Long: `Pelorus ingests NMEA-0183 sentences from boat instruments, arbitrates
between redundant sources, tracks session trends and serves display-ready
values over HTTP and MQTT.`,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./pelorus.yaml", "Path to YAML config")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"albumstore/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "albumstore",
	Short: "Sticker album storefront API with PIX checkout",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads config and, when LOG_FILE is set, tees the standard logger
// into it. The returned func closes the file.
func setup() (config.Config, func()) {
	cfg := config.Load()
	if cfg.LogFile == "" {
		return cfg, func() {}
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		return cfg, func() {}
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	return cfg, func() { _ = f.Close() }
}

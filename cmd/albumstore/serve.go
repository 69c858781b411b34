package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"albumstore/internal/countdown"
	"albumstore/internal/http/handlers"
	applog "albumstore/internal/log"
	"albumstore/internal/repos"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog := setup()
		defer closeLog()
		if servePort != "" {
			cfg.Port = servePort
		}

		db, err := repos.OpenDB(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		offer := countdown.New(cfg.UnitsStart, cfg.OfferSeconds)
		if err := offer.Start(); err != nil {
			return err
		}
		defer offer.Stop()

		deps := handlers.NewDeps(db, cfg, offer)
		defer deps.Checkout.Shutdown()
		if err := deps.Checkout.StartSweeper(cfg.CheckoutIdle); err != nil {
			return err
		}
		app := handlers.NewApp(cfg, deps)

		go func() {
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			<-quit
			applog.Event("server.shutdown", nil, nil)
			if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
				log.Printf("[warn] shutdown: %v", err)
			}
		}()

		applog.Event("server.start", nil, map[string]any{"port": cfg.Port, "provider": cfg.PaymentProvider})
		return app.Listen(":" + cfg.Port)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Listen port (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"albumstore/internal/domain"
	"albumstore/internal/repos"
	"albumstore/internal/services"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the seeded catalog with prices and discounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog := setup()
		defer closeLog()

		db, err := repos.OpenDB(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		svc := services.NewCatalogService(repos.NewProductRepo(db), nil)
		secs, err := svc.Sections("")
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, s := range secs {
			fmt.Fprintf(w, "\n%s\n", s.Title)
			for _, p := range s.Products {
				fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t-%d%%\n", p.ID, p.Name, domain.BRL(p.OldPrice), domain.BRL(p.CurrentPrice), p.Discount)
			}
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

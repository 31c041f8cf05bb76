package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cupcakery/storefront/database/seeders"
	"github.com/cupcakery/storefront/pkg/database"
	"github.com/cupcakery/storefront/pkg/migration"
)

// storefront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Println("Running migrations…")
		ran, err := migration.New(database.DB).Run()
		for _, name := range ran {
			fmt.Println("  migrated:", name)
		}
		if err != nil {
			return err
		}
		if len(ran) == 0 {
			fmt.Println("Nothing to migrate.")
		}
		return nil
	},
}

// storefront migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Println("Rolling back last batch…")
		undone, err := migration.New(database.DB).Rollback()
		for _, name := range undone {
			fmt.Println("  rolled back:", name)
		}
		if err != nil {
			return err
		}
		if len(undone) == 0 {
			fmt.Println("Nothing to roll back.")
		}
		return nil
	},
}

// storefront migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		rows, err := migration.New(database.DB).Status()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "RAN\tMIGRATION\tBATCH")
		for _, row := range rows {
			ran, batch := "No", "-"
			if row.Ran {
				ran, batch = "Yes", fmt.Sprint(row.Batch)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", ran, row.Name, batch)
		}
		return w.Flush()
	},
}

// storefront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Println("Running seeders…")
		names, err := seeders.RunAll(database.DB)
		for _, name := range names {
			fmt.Println("  seeded:", name)
		}
		return err
	},
}

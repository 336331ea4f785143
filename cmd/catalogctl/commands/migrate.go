package commands

import (
	"fmt"
	"text/tabwriter"

	"catalog-api/internal/infrastructure/database"

	"github.com/spf13/cobra"
)

func newMigrateCommand(dsn func() (string, error)) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the catalog schema",
		Long: `Apply or inspect the embedded schema migrations.

Subcommands:
  up      - Apply pending migrations
  status  - Show migration status`,
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, closeDB, err := openMigrator(dsn)
			if err != nil {
				return err
			}
			defer closeDB()

			applied, err := m.Up(cmd.Context())
			for _, v := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", v)
			}
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no pending migrations")
			}
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, closeDB, err := openMigrator(dsn)
			if err != nil {
				return err
			}
			defer closeDB()

			rows, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}
			return printStatus(cmd, rows)
		},
	}

	migrate.AddCommand(up, status)
	return migrate
}

func openMigrator(dsn func() (string, error)) (*database.Migrator, func(), error) {
	url, err := dsn()
	if err != nil {
		return nil, nil, err
	}
	m, db, err := database.OpenMigrator(url)
	if err != nil {
		return nil, nil, err
	}
	return m, func() { _ = db.Close() }, nil
}

func printStatus(cmd *cobra.Command, rows []database.MigrationStatus) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
	for _, r := range rows {
		state, at := "pending", "-"
		if r.Applied() {
			state, at = "applied", r.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Version, r.Name, state, at)
	}
	return w.Flush()
}

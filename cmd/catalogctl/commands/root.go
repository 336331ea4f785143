package commands

import (
	"fmt"
	"os"

	"catalog-api/internal/config"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the catalogctl command tree.
func NewRootCommand() *cobra.Command {
	var dbURL string

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Catalog API administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbURL, "db", "", "Database URL (defaults to the DB_* environment)")

	dsn := func() (string, error) {
		if dbURL != "" {
			return dbURL, nil
		}
		cfg, err := config.LoadDatabaseConfig()
		if err != nil {
			return "", err
		}
		return cfg.DSN(), nil
	}

	root.AddCommand(newMigrateCommand(dsn), newTokenCommand())
	return root
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

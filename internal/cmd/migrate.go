package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/formsink/formsink/internal/core/store"
	errwrap "github.com/formsink/formsink/internal/errors"
	"github.com/formsink/formsink/internal/observability"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Apply the formsink schema to the configured store backend.

Safe to run repeatedly; existing tables are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "invalid configuration")
		}

		logger := observability.CLILogger

		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return errwrap.WrapDatabaseError(cmd.Context(), err, "store initialization failed")
		}
		defer st.Close() // nolint:errcheck // read-only close on exit

		if err := st.Migrate(cmd.Context()); err != nil {
			return errwrap.WrapDatabaseError(cmd.Context(), err, "store migration failed")
		}

		logger.Info("schema is up to date", zap.String("driver", st.Driver()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

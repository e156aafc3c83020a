package main

import (
	"fmt"
	"log/slog"

	"github.com/artpar/hwdb/internal/shell/store"
	"github.com/spf13/cobra"
)

const cmdDesc = `Read-only inventory of terminal deployments and systems.`

// rootArgs are the flags shared by all commands.
type rootArgs struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	args := &rootArgs{}

	cmd := &cobra.Command{
		Use:           "hwdb",
		Short:         cmdDesc,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVar(&args.configPath, "config", "", "Path to config file")

	cmd.AddCommand(
		newServeCmd(args),
		newImportCmd(args),
		newVersionCmd(),
	)

	return cmd
}

// =============================================================================
// serve
// =============================================================================

func newServeCmd(root *rootArgs) *cobra.Command {
	var (
		importPath string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inventory API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(cmd, root)
			if err != nil {
				return err
			}
			if importPath != "" {
				cfg.Snapshot.Path = importPath
			}
			if cmd.Flags().Changed("watch") {
				cfg.Snapshot.Watch = watch
			}
			logger.Info("starting hwdb",
				"version", Version,
				"config", root.configPath,
			)

			server, err := NewServer(cmd.Context(), cfg, logger)
			if err != nil {
				return logServerError(logger, "failed to create server", err)
			}

			if err := server.Start(cmd.Context()); err != nil {
				return logServerError(logger, "server error", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&importPath, "import", "", "Import a YAML/JSON snapshot before serving")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-import the snapshot whenever it changes")

	return cmd
}

// =============================================================================
// import
// =============================================================================

func newImportCmd(root *rootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Replace the stored inventory with a snapshot and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, root)
			if err != nil {
				return err
			}

			s, err := store.NewSQLiteStore(cfg.Database.DSN)
			if err != nil {
				return logServerError(logger, "failed to open database", &ServerError{
					Op:       "Import",
					Err:      err,
					ExitCode: ExitDatabaseError,
				})
			}
			defer s.Close()

			imp, err := importSnapshot(cmd.Context(), s, args[0], logger)
			if err != nil {
				return logServerError(logger, "import failed", &ServerError{
					Op:       "Import",
					Err:      err,
					ExitCode: ExitImportError,
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d deployments and %d systems from %s (%s)\n",
				imp.Deployments, imp.Systems, imp.Source, imp.ID)
			return nil
		},
	}
}

// =============================================================================
// version
// =============================================================================

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hwdb %s (built %s)\n", Version, BuildTime)
		},
	}
}

// =============================================================================
// Helpers
// =============================================================================

// setup loads the configuration and builds a logger writing to the
// command's output.
func setup(cmd *cobra.Command, root *rootArgs) (*Config, *slog.Logger, error) {
	cfg, err := LoadConfig(root.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	return cfg, NewLogger(cfg, cmd.OutOrStdout()), nil
}

func logServerError(logger *slog.Logger, msg string, err error) error {
	if sErr, ok := err.(*ServerError); ok {
		logger.Error(msg,
			"error", sErr.Err,
			"operation", sErr.Op,
		)
		return sErr
	}
	logger.Error(msg, "error", err)
	return err
}

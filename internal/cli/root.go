// Package cli is the storefront command line: a sandbox server and a terminal shop
// front backed by the same cart, session and order components as any other surface.
package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/notify"
)

const (
	flagConfig   = "config"
	flagOutput   = "output"
	flagLogLevel = "log-level"

	outputTable = "table"
	outputJSON  = "json"
)

// Execute runs the root command; called by main
func Execute() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storefront [sub-command]",
		Short: "Grocery storefront client and sandbox backend",
		Long: `Browse the catalog, manage a persistent cart, check out and follow orders
against a storefront API. "storefront sandbox" serves a seeded in-memory API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	cmd.PersistentFlags().StringP(flagConfig, "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringP(flagOutput, "o", outputTable, "output format: table or json")
	cmd.PersistentFlags().String(flagLogLevel, "", "log level, overriding the config file")

	cmd.AddCommand(
		newSandboxCmd(),
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newProductsCmd(),
		newCartCmd(),
		newCheckoutCmd(),
		newOrdersCmd(),
		newAdminCmd(),
	)
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if lvl, _ := cmd.Flags().GetString(flagLogLevel); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, logging.New(cfg.Log, cmd.ErrOrStderr()), nil
}

// withApp runs fn against an initialized App and releases it afterwards
func withApp(fn func(cmd *cobra.Command, args []string, a *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := app.New(cmd.Context(), cfg, log, app.WithNotifier(notify.NewWriter(cmd.ErrOrStderr())))
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				log.WithError(err).Warn("closing storage")
			}
		}()
		if err := a.Initialize(cmd.Context()); err != nil {
			return err
		}
		return fn(cmd, args, a)
	}
}

func outputFormat(cmd *cobra.Command) string {
	f, _ := cmd.Flags().GetString(flagOutput)
	if f == outputJSON {
		return outputJSON
	}
	return outputTable
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/hr-employee-names/internal/app"
	"github.com/ogurasousui/hr-employee-names/internal/core/settings"
	"github.com/ogurasousui/hr-employee-names/internal/platform/config"
	pg "github.com/ogurasousui/hr-employee-names/internal/platform/db/postgres"
	"github.com/ogurasousui/hr-employee-names/internal/platform/logging"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "namesctl",
		Short:         "Maintain employee name parts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (defaults to CONFIG_PATH env or assets/local.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(backfillCmd(opts), recomputeCmd(opts), formatCmd(opts))
	return cmd
}

func backfillCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Fill missing first, last and nick names from the stored full name",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), opts, func(ctx context.Context, c *app.Container) error {
				result, err := c.Employees.Backfill(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d updated=%d\n", result.Scanned, result.Updated)
				return nil
			})
		},
	}
}

func recomputeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute-names",
		Short: "Recompose every employee name with the current format settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), opts, func(ctx context.Context, c *app.Container) error {
				result, err := c.Employees.RecomputeNames(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d updated=%d\n", result.Scanned, result.Updated)
				return nil
			})
		},
	}
}

func formatCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Show or change the system name format",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the system name format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), opts, func(ctx context.Context, c *app.Container) error {
				current, err := c.Settings.GetNameSettings(ctx)
				if err != nil {
					return err
				}
				printSettings(cmd, current)
				return nil
			})
		},
	})

	var pattern string
	set := &cobra.Command{
		Use:   "set FORMAT",
		Short: "Set the system name format (western, asian, spanish, arabic, custom)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := settings.UpdateNameSettingsInput{Format: &args[0]}
			if cmd.Flags().Changed("pattern") {
				in.CustomPattern = &pattern
			}
			return withContainer(cmd.Context(), opts, func(ctx context.Context, c *app.Container) error {
				updated, err := c.Settings.UpdateNameSettings(ctx, in)
				if err != nil {
					return err
				}
				printSettings(cmd, updated)
				return nil
			})
		},
	}
	set.Flags().StringVar(&pattern, "pattern", "", "Custom pattern using {first_name}, {last_name} and {nickname}")
	cmd.AddCommand(set)

	return cmd
}

func printSettings(cmd *cobra.Command, s *settings.NameSettings) {
	fmt.Fprintf(cmd.OutOrStdout(), "format=%s\n", s.Format)
	if s.CustomPattern != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "custom_pattern=%s\n", s.CustomPattern)
	}
}

func withContainer(ctx context.Context, opts *options, fn func(context.Context, *app.Container) error) error {
	cfgPath := opts.configPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger := logging.New(level)

	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, app.Build(pool, cfg.Names, logger, nil))
}

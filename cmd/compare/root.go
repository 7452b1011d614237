package main

import (
	"fmt"
	"io"
	"os"

	"github.com/beerlens/backend/config"
	"github.com/beerlens/backend/internal/di"
	"github.com/beerlens/backend/internal/logging"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Color definitions for terminal output
var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
)

// cli carries the state shared by every subcommand
type cli struct {
	root   *cobra.Command
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           "compare",
		Short:         "Compare up to four beers side by side",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c.root = rootCmd
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.String("proxy-base", "", "Prefix for every outbound product request")
	flags.String("detail-endpoint", "", "Item detail endpoint")
	flags.Int("concurrency", 1, "Products fetched at once")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("repair", "", "Detail payload repair strategy (trailing_comma, jsonrepair)")

	bindings := map[string]string{
		"remote.proxy_base":         "proxy-base",
		"remote.detail_endpoint":    "detail-endpoint",
		"compare.entry_concurrency": "concurrency",
		"log.level":                 "log-level",
		"remote.repair":             "repair",
	}
	for key, flag := range bindings {
		if err := c.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(newRunCmd(c))
	rootCmd.AddCommand(newServeCmd(c))

	return rootCmd
}

// build loads configuration and wires the services, registering metrics with reg.
// Unset flags fall back to the config file, environment and defaults.
func (c *cli) build(reg prometheus.Registerer, mutate func(*config.Config)) (*di.Container, error) {
	cfg, err := config.LoadWith(c.v)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(cfg)
	}

	logger, err := logging.New(cfg.Server.Environment, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	container, err := di.BuildContainer(cfg, logger, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to build container: %w", err)
	}
	return container, nil
}

// quietLogs applies the log-level flag default unless a level was asked for
// explicitly, so a one-off run keeps the terminal clean.
func (c *cli) quietLogs(cfg *config.Config) {
	level := c.root.PersistentFlags().Lookup("log-level")
	if !level.Changed && os.Getenv("BEERLENS_LOG_LEVEL") == "" {
		cfg.Log.Level = level.DefValue
	}
}

func syncLogger(logger *zap.Logger) {
	_ = logger.Sync()
}

/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
// Package cmd contains the ecocycle command tree.
package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ecocycle/connect/config"
	"github.com/ecocycle/connect/internal/output"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
	noColor bool
	cfg     config.Config
	logger  *slog.Logger
	printer *output.Printer
	version = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ecocycle",
	Short: "EcoCycle Connect command line client",
	Long: `ecocycle signs you in to EcoCycle Connect and shows your marketplace dashboard.

Example usage:
  ecocycle login -e you@example.com --remember   # keep the session across terminals
  ecocycle whoami                                # show the signed in account
  ecocycle dashboard                             # role specific stats and listings
  ecocycle logout
  ecocycle server --seed                         # run the local reference backend`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/ecocycle/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only print errors")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")
}

// initConfig loads configuration and sets up logging and output.
func initConfig(cmd *cobra.Command) error {
	loaded, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded

	logger = newLogger(cmd.ErrOrStderr(), cfg.Logging, verbose)
	printer = output.NewPrinterWithWriters(
		cmd.OutOrStdout(),
		cmd.ErrOrStderr(),
		output.ColorsEnabled(cfg.Output.Colors && !noColor),
		quiet,
	)

	logger.Debug("configuration loaded",
		"api", cfg.API.BaseURL,
		"credentials_dir", cfg.Credentials.Dir,
		"session_dir", cfg.Credentials.SessionDir,
	)
	return nil
}

func newLogger(w io.Writer, lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

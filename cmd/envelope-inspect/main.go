package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	mmate "github.com/glimte/mmate-envelope"
	"github.com/glimte/mmate-envelope/config"
	"github.com/glimte/mmate-envelope/health"
	"github.com/glimte/mmate-envelope/serialization"
)

var (
	// Version information
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:   "envelope-inspect",
		Short: "Inspect encoded mmate envelopes",
		Long: `envelope-inspect reads an encoded envelope or claim-check reference from a
file (or "-" for stdin) and prints what it contains as JSON.

No payload types are registered, so every item is reported as raw with its
contract name, offset and length.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildTime),
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	loadConfig := func() (config.Config, error) {
		if configPath == "" {
			return config.Default(), nil
		}
		return config.Load(configPath)
	}

	newClient := func(cfg config.Config) (*mmate.Client, error) {
		level, _ := cfg.Log.SlogLevel()
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
		return mmate.NewClient(cfg, serialization.NewTypeRegistry(), mmate.WithLogger(logger))
	}

	headerCmd := &cobra.Command{
		Use:   "header <file>",
		Short: "Print the fixed header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			report, err := inspectHeader(buf)
			if err != nil {
				return fmt.Errorf("failed to read header: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}

	var (
		metadataFormat string
		diag           bool
	)
	metadataCmd := &cobra.Command{
		Use:   "metadata <file>",
		Short: "Print the metadata block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := metadataFormat
			if format == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				format = cfg.Codec.MetadataFormat
			}

			buf, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			out, err := inspectMetadata(buf, format, diag)
			if err != nil {
				return fmt.Errorf("failed to read metadata: %w", err)
			}
			if text, ok := out.(string); ok {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	metadataCmd.Flags().StringVarP(&metadataFormat, "format", "f", "", "Metadata format: cbor or json (default from config)")
	metadataCmd.Flags().BoolVar(&diag, "diag", false, "Print CBOR diagnostic notation instead of JSON")

	var resolve bool
	sniffCmd := &cobra.Command{
		Use:   "sniff <file>",
		Short: "Report whether the input is an envelope or a reference, and list its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if resolve && !cfg.ClaimCheck.Enabled {
				return fmt.Errorf("--resolve requires claim_check.enabled in the configuration")
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			buf, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			report, err := sniff(cmd.Context(), client, buf, cfg.Codec.MetadataFormat, resolve)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	sniffCmd.Flags().BoolVar(&resolve, "resolve", false, "Fetch and decode the envelope behind a reference")

	var timeout time.Duration
	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check the codec and the configured claim-check store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			report := client.Health(ctx)
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if report.Status == health.StatusUnhealthy {
				return fmt.Errorf("unhealthy")
			}
			return nil
		},
	}
	healthCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Overall timeout for all checks")

	rootCmd.AddCommand(headerCmd, metadataCmd, sniffCmd, healthCmd)
	return rootCmd
}

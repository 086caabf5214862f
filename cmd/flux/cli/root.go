// Package cli implements the flux command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/silvanwing/flux"
	"github.com/silvanwing/flux/cmd/flux/cli/config"
	"github.com/silvanwing/flux/core"
)

// Build information set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cfgFile is the path to the config file (set via --config flag).
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "flux",
	Short: "Pack, extract, inspect, and sync file archives",
	Long: `Flux packs directories and files into tar, zip, or 7-Zip archives,
extracts them back out under strict path-traversal and decompression-bomb
defenses, inspects an archive's contents without extracting, and takes
incremental snapshots of a directory tree against a saved manifest.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose debug logging")

	//nolint:errcheck // flags are defined above, so Lookup will never return nil
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	viper.SetDefault("security.max_extraction_size", core.DefaultMaxExtractionSize)
	viper.SetDefault("security.max_compression_ratio", core.DefaultMaxCompressionRatio)
	viper.SetDefault("security.allow_external_symlinks", false)
	viper.SetDefault("pack.level", core.DefaultLevel)
	viper.SetDefault("pack.threads", 0)

	rootCmd.Version = version
}

func initConfig() {
	if os.Getenv("FLUX_NO_CONFIG") != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := config.Dir()
		if err == nil {
			viper.AddConfigPath(configDir)
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FLUX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Config file is optional - don't fail if missing.
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config:", viper.ConfigFileUsed())
		}
	}
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
	}
	return err
}

// newClient builds a flux client with the configured logger and security
// overrides.
func newClient() (*flux.Client, error) {
	opts := []flux.ClientOption{
		flux.WithSecurityOptions(flux.SecurityOptions{
			MaxExtractionSize:     viper.GetInt64("security.max_extraction_size"),
			MaxCompressionRatio:   viper.GetFloat64("security.max_compression_ratio"),
			AllowExternalSymlinks: viper.GetBool("security.allow_external_symlinks"),
			CheckDiskSpace:        true,
		}),
	}

	if viper.GetBool("verbose") {
		opts = append(opts, flux.WithLogger(
			slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
		))
	}

	return flux.NewClient(opts...)
}

// signalContext returns a context that is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// formatError converts flux errors to user-friendly messages.
func formatError(err error) string {
	if err == nil {
		return ""
	}

	if pf, ok := flux.AsPartialFailure(err); ok {
		return fmt.Sprintf("Error: %d entries failed", pf.Count)
	}

	switch {
	case errors.Is(err, flux.ErrNotFound):
		return fmt.Sprintf("Error: not found: %v", err)
	case errors.Is(err, flux.ErrInvalidPath), errors.Is(err, flux.ErrSecurity):
		return fmt.Sprintf("Error: security check failed: %v", err)
	case errors.Is(err, flux.ErrUnsupportedFormat):
		return fmt.Sprintf("Error: unsupported format: %v", err)
	case errors.Is(err, flux.ErrFileExists):
		return fmt.Sprintf("Error: destination already exists: %v", err)
	case errors.Is(err, context.Canceled):
		return "Error: operation canceled"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

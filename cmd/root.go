// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/torin/internal/config"
	"github.com/xkilldash9x/torin/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

var cfgFile string

// flagBindings maps config keys to the flags that override them. Flags that
// are not defined on the running command are skipped.
var flagBindings = map[string]string{
	"logger.level":           "log-level",
	"layout.viewport_width":  "viewport-width",
	"layout.viewport_height": "viewport-height",
	"layout.measurer":        "measurer",
	"output.format":          "format",
	"output.compress":        "compress",
	"output.indent":          "indent",
	"batch.concurrency":      "concurrency",
}

// NewRootCommand builds the torin command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "torin",
		Short:   "Torin lays out element trees and reports what moved.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(cmd, v); err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "torin"})
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "torin"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger())
			observability.GetLogger().Debug("Starting torin", zap.String("version", Version), zap.String("command", cmd.Name()))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "torin version %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default is ./torin.yaml or ~/.config/torin/torin.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Float64("viewport-width", 1280, "viewport width")
	flags.Float64("viewport-height", 720, "viewport height")
	flags.String("measurer", config.MeasurerPixel, "text measurer: pixel, cell or none")
	flags.StringP("format", "f", config.FormatJSON, "output format: json or text")
	flags.Bool("compress", false, "brotli-compress JSON output")
	flags.Bool("indent", true, "indent JSON output")

	rootCmd.AddCommand(newLayoutCmd())
	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the command tree with ctx, typically a signal-aware context.
func Execute(ctx context.Context) error {
	defer observability.Sync()
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			observability.GetLogger().Error("Command execution failed", zap.Error(err))
		}
		return err
	}
	return nil
}

// initializeConfig reads the config file, TORIN_* environment variables and
// command line flags into v, in increasing order of precedence.
func initializeConfig(cmd *cobra.Command, v *viper.Viper) error {
	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to expand config path: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home + "/.config/torin")
		}
		v.SetConfigName("torin")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("TORIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	for key, name := range flagBindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}
	return nil
}

// getConfigFromContext returns the configuration stored by PersistentPreRunE.
func getConfigFromContext(ctx context.Context) (config.Interface, error) {
	cfg, ok := ctx.Value(configKey).(config.Interface)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not found in context")
	}
	return cfg, nil
}

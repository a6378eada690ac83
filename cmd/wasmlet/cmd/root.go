// Package cmd provides the CLI commands for the wasmlet application.
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zebreus/wasmlet/internal/config"
	"github.com/zebreus/wasmlet/internal/logging"
	"github.com/zebreus/wasmlet/internal/plugins"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfgFile          string
	pluginSpecifiers []string
	listPlugins      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "wasmlet [flags] TEXT...",
	Short: "Format text using sandboxed WASM plugins",
	Long: `A text-transformation pipeline driven by WASM plugins. The positional
arguments are joined with spaces and threaded through every plugin given
with --plugins, in order; the final text is printed to standard output.`,
	Example: `  # Print text unchanged
  wasmlet Hello

  # Color the text with the rainbow plugin
  wasmlet -p rainbow "Hello, world!"

  # Render large letters, then color them
  wasmlet -p bigfont -p rainbow WASMlet`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	Args: func(cmd *cobra.Command, args []string) error {
		if listPlugins {
			return nil
		}
		if len(args) == 0 {
			cmd.PrintErrln(cmd.UsageString())

			return errors.New("at least one text argument is required")
		}

		return nil
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Initialize configuration before running any command
		if err := config.Initialize(cfgFile); err != nil {
			return fmt.Errorf("failed to initialize configuration: %w", err)
		}
		cfg := config.Get()

		// Explicit flags override config file and environment
		if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
			cfg.Log.Level = f.Value.String()
		}
		if f := cmd.Flags().Lookup("log-format"); f != nil && f.Changed {
			cfg.Log.Format = f.Value.String()
		}
		if f := cmd.Flags().Lookup("plugin-dir"); f != nil && f.Changed {
			cfg.Plugin.Dir = f.Value.String()
		}

		logging.InitLogger(cfg.Log.Level, cfg.Log.Format != "json")

		return nil
	},
	RunE: runPipeline,
}

// runPipeline loads the requested plugins and folds the joined input text
// through them.
func runPipeline(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	ctx := cmd.Context()

	if listPlugins {
		return printPluginList(cmd, cfg.Plugin.Dir)
	}

	pipeline, err := plugins.LoadPipeline(ctx, pluginSpecifiers, cfg.Plugin.Dir)
	if err != nil {
		return err
	}
	defer func() {
		if err := pipeline.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to release plugin resources")
		}
	}()

	input := strings.Join(args, " ")

	output, err := pipeline.Run(ctx, input)
	if err != nil {
		return err
	}

	log.Debug().
		Str("event", "pipeline_done").
		Str("output", logging.FormatText(output)).
		Msg("pipeline finished")

	fmt.Fprintln(cmd.OutOrStdout(), output)

	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().
		StringArrayVarP(&pluginSpecifiers, "plugins", "p", nil,
			"WASM plugin that should process the text; repeatable, applied in order")
	rootCmd.Flags().
		BoolVar(&listPlugins, "list-plugins", false, "List plugins in the plugin directory")

	// Add persistent flags that affect all commands
	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default: config.yaml looked up in ., $HOME/.wasmlet, /etc/wasmlet)")

	// Add global flags that can override config file settings
	rootCmd.PersistentFlags().
		String("log-level", "info", "logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "logging format (human, json)")
	rootCmd.PersistentFlags().
		String("plugin-dir", "", "plugin lookup directory (default "+plugins.DefaultPluginDir+")")

	// Parse and usage errors should still show how to call the tool.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		cmd.PrintErrln(cmd.UsageString())

		return err
	})
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/panbanda/relic/internal/logging"
	"github.com/panbanda/relic/pkg/config"
	"github.com/spf13/cobra"
)

// skipConfig marks commands that resolve the configuration themselves.
const skipConfig = "relic/skip-config"

var (
	cfgFile      string
	verbose      bool
	noColor      bool
	pprofPrefix  string
	pprofCPUFile *os.File

	// terminalNoColor is fatih/color's own verdict for the output terminal.
	terminalNoColor = color.NoColor

	// appConfig is the effective configuration for the running command.
	appConfig = config.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "relic",
	Short: "Complexity triage for legacy artifacts",
	Long: `Relic measures cyclomatic and cognitive complexity, nesting depth,
Halstead volume and difficulty, and the maintainability index of legacy
artifacts, then ranks them by migration risk.

Supports: Perl, TIBCO BusinessWorks processes, and Pentaho Kettle
transformations and jobs.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if pprofPrefix == "" {
			return nil
		}
		pprof.StopCPUProfile()
		if pprofCPUFile != nil {
			pprofCPUFile.Close()
			color.Green("CPU profile written to %s.cpu.pprof", pprofPrefix)
		}

		memFile, err := os.Create(pprofPrefix + ".mem.pprof")
		if err != nil {
			return fmt.Errorf("failed to create memory profile: %w", err)
		}
		defer memFile.Close()

		runtime.GC()
		if err := pprof.WriteHeapProfile(memFile); err != nil {
			return fmt.Errorf("failed to write memory profile: %w", err)
		}
		color.Green("Memory profile written to %s.mem.pprof", pprofPrefix)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&pprofPrefix, "pprof", "", "Enable pprof profiling (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)")
}

// setup loads .env and the configuration, installs the logger and starts
// profiling when requested.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	appConfig = config.DefaultConfig()
	if _, skip := cmd.Annotations[skipConfig]; !skip {
		var opts []config.LoadOption
		if cfgFile != "" {
			opts = append(opts, config.WithPath(cfgFile))
		}
		result, err := config.LoadConfig(opts...)
		if err != nil {
			return err
		}
		appConfig = result.Config
	}

	level := appConfig.Logging.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.Setup(logging.Options{
		Level:  level,
		Format: appConfig.Logging.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded", "command", cmd.CommandPath(), "config", cfgFile)

	color.NoColor = terminalNoColor || noColor || !appConfig.Output.Color

	if pprofPrefix != "" {
		f, err := os.Create(pprofPrefix + ".cpu.pprof")
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		pprofCPUFile = f
		slog.Debug("cpu profiling started", "file", f.Name())
	}
	return nil
}

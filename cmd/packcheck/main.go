// Package main provides the packcheck binary entry point.
// Packcheck executes declarative conformance specifications against the
// package surfaces registered with this binary and reports pass/fail per
// feature.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/c360studio/packcheck/config"
	"github.com/c360studio/packcheck/introspect"
	"github.com/c360studio/packcheck/report"
	"github.com/c360studio/packcheck/runner"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "packcheck"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		hostTag  string
		color    string
		logLevel string
		patterns []string
	)

	cmd := &cobra.Command{
		Use:   appName + " [path]",
		Short: "Cross-language package conformance checker",
		Long: `Packcheck runs declarative conformance specifications against live
package implementations.

A specification is an ordered list of features - property reads, calls,
and assignments - written once per package and executed against every
host language. This binary is the Go host: it resolves features against
the package surfaces registered with it and reports pass/fail per
feature plus aggregate ratios.

The exit code is 0 only if every specification document passes.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, root, err := setup(args, hostTag, color, logLevel, patterns)
			if err != nil {
				return err
			}
			ok, err := r.Run(root)
			if err != nil {
				return err
			}
			if !ok {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&hostTag, "lang", "", "host language tag matched against filter tags (default from config)")
	cmd.PersistentFlags().StringVar(&color, "color", "", "colorize output: auto, always, or never")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringSliceVar(&patterns, "pattern", nil, "glob patterns for spec discovery (repeatable)")

	cmd.AddCommand(watchCmd(&hostTag, &color, &logLevel, &patterns))
	cmd.AddCommand(packagesCmd())
	cmd.AddCommand(configCmd(&logLevel))
	cmd.AddCommand(versionCmd())
	return cmd
}

func configCmd(logLevel *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage packcheck configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the user config file with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.NewLoader(newLogger(*logLevel)).EnsureUserConfig()
		},
	})
	return cmd
}

func watchCmd(hostTag, color, logLevel *string, patterns *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-run specifications whenever a spec file changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, root, err := setup(args, *hostTag, *color, *logLevel, *patterns)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return r.Watch(ctx, root)
		},
	}
}

func packagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "packages",
		Short: "List package surfaces registered with this binary",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := introspect.DefaultRegistry.Packages()
			if len(names) == 0 {
				fmt.Println("no package surfaces registered")
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s (built %s)\n", appName, Version, BuildTime)
		},
	}
}

// setup assembles logger, configuration, and runner from flags and layered
// config files. Flags override configuration when set.
func setup(args []string, hostTag, color, logLevel string, patterns []string) (*runner.Runner, string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	logger := newLogger(logLevel)
	cfg, err := config.NewLoader(logger).Load()
	if err != nil {
		return nil, "", err
	}
	if hostTag != "" {
		cfg.Run.HostTag = hostTag
	}
	if color != "" {
		cfg.Run.Color = color
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	} else {
		logger = newLogger(cfg.Log.Level)
	}
	if len(patterns) > 0 {
		cfg.Specs.Patterns = patterns
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	useColor := false
	switch cfg.Run.Color {
	case "always":
		useColor = true
	case "never":
		useColor = false
	default:
		useColor = report.ColorEnabled(os.Stdout)
	}

	reporter := report.NewReporter(os.Stdout, useColor)
	return runner.New(cfg, reporter, logger), root, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

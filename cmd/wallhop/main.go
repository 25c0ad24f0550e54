// Package main is the entry point for the wallhop CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/darkawower/wallhop/internal/core"
	"github.com/darkawower/wallhop/internal/scope"
	"github.com/darkawower/wallhop/internal/ui"

	_ "github.com/darkawower/wallhop/internal/platform/linux"
)

var (
	// Global flags
	cfgFile     string
	logLevel    string
	logFile     string
	desktopFlag string
	verbose     bool
	quiet       bool
	noColor     bool

	// Global output
	out *ui.Output
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the process exit code.
func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initOutput()

	sc, rest, err := scope.Extract(args)
	if err != nil {
		out.ErrorWithHint(err.Error(), "Pass at most one monitor number, e.g. 'wallhop 2 back'")
		return core.ExitCode(err)
	}

	rootCmd := newRootCmd(sc)
	rootCmd.SetArgs(rest)

	err = rootCmd.ExecuteContext(ctx)
	var reported reportedError
	if err != nil && !errors.As(err, &reported) {
		out.Error("%v", err)
	}
	return core.ExitCode(err)
}

func newRootCmd(sc scope.Scope) *cobra.Command {
	var flags fetchFlags

	rootCmd := &cobra.Command{
		Use:   "wallhop [monitor] [flags]",
		Short: "Wallpaper changer for Linux desktops",
		Long: `Wallhop fetches wallpapers from wallhaven.cc (or a local folder) and applies
them to the desktop. Every monitor keeps its own history that can be walked
with 'back' and 'forward'.

A bare number selects a monitor: 'wallhop 2' changes only the second monitor,
'wallhop 2 back' goes back in that monitor's history. Without a number the
wallpaper applies to all monitors.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initOutput()
			return setupLogger(resolveLogLevel(cmd), logFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.save {
				return saveFlags(cmd, &flags)
			}
			return runFetch(cmd, sc, &flags)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/wallhop/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")
	rootCmd.PersistentFlags().StringVar(&desktopFlag, "desktop", "", "desktop environment to target (default: detected)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	flags.register(rootCmd)

	rootCmd.AddCommand(
		newBackCmd(sc),
		newForwardCmd(sc),
		newCopyCmd(sc),
		newLocalRandomCmd(sc),
		newCleanupCmd(sc),
		newShowConfigCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// initOutput initializes the output.
func initOutput() {
	out = ui.DefaultOutput()
	out.SetVerbose(verbose)
	out.SetQuiet(quiet)
	out.SetNoColor(noColor)
}

// shortenPath shortens a path for display.
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if len(path) > len(home) && path[:len(home)] == home && path[len(home)] == os.PathSeparator {
		return "~" + path[len(home):]
	}
	return path
}

func scopeArg(sc scope.Scope) string {
	if sc.IsGlobal() {
		return ""
	}
	return fmt.Sprintf("%d ", sc.Index())
}

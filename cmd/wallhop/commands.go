package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/darkawower/wallhop/internal/config"
	"github.com/darkawower/wallhop/internal/core"
	"github.com/darkawower/wallhop/internal/platform"
	"github.com/darkawower/wallhop/internal/scope"
	"github.com/darkawower/wallhop/internal/ui"
)

// runFetch fetches a new wallpaper and applies it.
func runFetch(cmd *cobra.Command, sc scope.Scope, flags *fetchFlags) error {
	ctx := cmd.Context()

	a, err := newApp(sc, flags.overrides(cmd), true)
	defer a.Close()
	if err != nil {
		return a.report(ctx, err)
	}

	spinner := ui.NewSpinner(out, "Fetching wallpaper...")
	spinner.Start()
	res, err := a.engine.Next(ctx, sc)
	spinner.Stop()
	if err != nil {
		return a.report(ctx, err)
	}

	out.WallpaperInfo(wallpaperInfo("Wallpaper set", res))
	return nil
}

// saveFlags writes the given flags into the config file.
func saveFlags(cmd *cobra.Command, flags *fetchFlags) error {
	cfg, err := loadConfig(flags.overrides(cmd))
	if err != nil {
		return err
	}

	path := cfg.ConfigPath()
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	out.Success("Configuration saved to %s", shortenPath(path))
	return nil
}

func newBackCmd(sc scope.Scope) *cobra.Command {
	return &cobra.Command{
		Use:   "back",
		Short: "Go back to the previous wallpaper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNavigate(cmd, sc, false)
		},
	}
}

func newForwardCmd(sc scope.Scope) *cobra.Command {
	return &cobra.Command{
		Use:     "forward",
		Aliases: []string{"fwd"},
		Short:   "Go forward to a newer wallpaper",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNavigate(cmd, sc, true)
		},
	}
}

func runNavigate(cmd *cobra.Command, sc scope.Scope, forward bool) error {
	ctx := cmd.Context()

	a, err := newApp(sc, config.Overrides{}, false)
	defer a.Close()
	if err != nil {
		return a.report(ctx, err)
	}

	var res *core.NavigationResult
	if forward {
		res, err = a.engine.Forward(ctx, sc)
	} else {
		res, err = a.engine.Back(ctx, sc)
	}
	if err != nil {
		return a.report(ctx, err)
	}

	title := fmt.Sprintf("Wallpaper %d of %d", res.Length-res.Cursor, res.Length)
	out.WallpaperInfo(wallpaperInfo(title, &res.WallpaperResult))
	if res.Skipped > 0 {
		out.Warning("Skipped %d entries whose files are missing", res.Skipped)
	}
	return nil
}

func newCopyCmd(sc scope.Scope) *cobra.Command {
	return &cobra.Command{
		Use:   "copy",
		Short: "Copy the current wallpaper to the copy directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(sc, config.Overrides{}, false)
			defer a.Close()
			if err != nil {
				return a.report(ctx, err)
			}

			res, err := a.engine.Copy(sc)
			if err != nil {
				return a.report(ctx, err)
			}

			out.Success("Copied to %s", shortenPath(res.Dest))
			out.Field("Source", shortenPath(res.Source))
			a.notify(ctx, "Wallpaper copied", shortenPath(res.Dest), platform.UrgencyNormal)
			return nil
		},
	}
}

func newLocalRandomCmd(sc scope.Scope) *cobra.Command {
	return &cobra.Command{
		Use:     "local-random",
		Aliases: []string{"local"},
		Short:   "Apply a random wallpaper from the local directory",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(sc, config.Overrides{}, true)
			defer a.Close()
			if err != nil {
				return a.report(ctx, err)
			}

			res, err := a.engine.LocalRandom(ctx, sc)
			if err != nil {
				return a.report(ctx, err)
			}

			out.WallpaperInfo(wallpaperInfo("Wallpaper set", res))
			return nil
		},
	}
}

func newCleanupCmd(sc scope.Scope) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove history entries whose files no longer exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(sc, config.Overrides{}, false)
			defer a.Close()
			if err != nil {
				return a.report(ctx, err)
			}

			res, err := a.engine.Cleanup(sc)
			if err != nil {
				return a.report(ctx, err)
			}

			out.Success("History of %s cleaned", res.Scope)
			out.Field("Removed", fmt.Sprintf("%d", res.Removed))
			out.Field("Kept", fmt.Sprintf("%d", res.Kept))
			a.notify(ctx, "History cleaned",
				fmt.Sprintf("Removed %d, kept %d", res.Removed, res.Kept), platform.UrgencyNormal)
			return nil
		},
	}
}

func newShowConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-config",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if desktopFlag != "" {
				cfg.Desktop.Name = desktopFlag
			}

			engine := core.New(cfg, nil)
			rows := make([][]string, 0, 32)
			for _, s := range engine.ShowConfig() {
				rows = append(rows, []string{s.Key, s.Value})
			}
			out.Table([]string{"SETTING", "VALUE"}, rows)

			sink, err := platform.Detect(cfg.Desktop.Name, os.Getenv, platform.ExecRunner{})
			if err != nil {
				out.FieldColored("Detected desktop", err.Error(), color.FgYellow)
			} else {
				out.FieldColored("Detected desktop", sink.Name(), color.FgGreen)
			}

			if err := cfg.Validate(); err != nil {
				out.Warning("%v", err)
			}
			return nil
		},
	}
}

func wallpaperInfo(title string, res *core.WallpaperResult) ui.Wallpaper {
	return ui.Wallpaper{
		Title:      title,
		Scope:      res.Scope.String(),
		Source:     res.Source,
		ID:         res.ID,
		Label:      res.Label,
		Resolution: res.Resolution,
		Path:       shortenPath(res.Path),
		Size:       res.Size,
		SetAt:      res.SetAt,
	}
}

// version is set at build time via -ldflags.
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out.Print("%s version %s", config.AppName, version)
		},
	}
}

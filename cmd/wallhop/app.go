package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/darkawower/wallhop/internal/config"
	"github.com/darkawower/wallhop/internal/core"
	"github.com/darkawower/wallhop/internal/lock"
	"github.com/darkawower/wallhop/internal/platform"
	"github.com/darkawower/wallhop/internal/scope"
	"github.com/darkawower/wallhop/internal/wallpaper"
)

const notifyExpire = 5 * time.Second

// app holds what a wallpaper command needs once setup succeeded.
type app struct {
	scope    scope.Scope
	cfg      *config.Config
	engine   *core.Engine
	applier  *wallpaper.Applier
	notifier platform.Notifier
	handle   *lock.Handle
}

// loadConfig resolves the configuration: defaults, config file, then flags.
func loadConfig(o config.Overrides) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if desktopFlag != "" {
		o.Desktop = &desktopFlag
	}
	cfg.Apply(o)
	if path := cfg.ConfigPath(); path != "" {
		out.Debug("Using config %s", shortenPath(path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp prepares a wallpaper command. Validation and desktop detection run
// before anything touches disk. throttled commands are subject to the
// minimum interval between runs.
func newApp(sc scope.Scope, o config.Overrides, throttled bool) (*app, error) {
	a := &app{scope: sc}

	cfg, err := loadConfig(o)
	if err != nil {
		return a, err
	}
	a.cfg = cfg
	if cfg.Desktop.Notify {
		a.notifier = platform.NewNotifySend(platform.ExecRunner{}, config.AppName)
	}

	sink, err := platform.Detect(cfg.Desktop.Name, os.Getenv, platform.ExecRunner{})
	if err != nil {
		return a, err
	}
	a.applier = wallpaper.NewApplier(sink)
	if err := a.applier.Check(); err != nil {
		return a, err
	}
	log.Debug().Str("desktop", a.applier.Desktop()).Msg("desktop detected")

	if err := cfg.EnsureDirectories(); err != nil {
		return a, err
	}

	locker := lock.New(cfg.Lock.Dir, lock.Options{
		StaleAfter:  cfg.StaleAfter(),
		MinInterval: cfg.MinInterval(),
	})
	h, err := locker.Acquire(throttled)
	if err != nil {
		return a, err
	}
	a.handle = h

	a.engine = core.New(cfg, a.applier)
	return a, nil
}

// Close releases the lock.
func (a *app) Close() {
	if a != nil && a.handle != nil {
		a.handle.Release()
	}
}

func (a *app) notify(ctx context.Context, title, body string, urgency platform.Urgency) {
	if a == nil || a.notifier == nil {
		return
	}
	// The command context may already be cancelled; notifications still go out.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	err := a.notifier.Notify(ctx, platform.Notification{
		Title:   title,
		Body:    body,
		Urgency: urgency,
		Expire:  notifyExpire,
	})
	if err != nil {
		log.Debug().Err(err).Msg("notification failed")
	}
}

// reportedError marks an error that has already been shown to the user.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

// report shows err to the user according to its class and returns it marked
// as reported. Busy outcomes are only logged.
func (a *app) report(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	class := core.Classify(err)

	switch {
	case core.Silent(err):
		log.Debug().Err(err).Msg("skipped")
	case core.Expected(err):
		out.Info("%s: %v", class.Title(), err)
		a.notify(ctx, class.Title(), err.Error(), platform.UrgencyLow)
	default:
		if hint := hintFor(class, a.scope); hint != "" {
			out.ErrorWithHint(err.Error(), hint)
		} else {
			out.Error("%v", err)
		}
		a.notify(ctx, class.Title(), err.Error(), platform.UrgencyCritical)
	}
	return reportedError{err}
}

func hintFor(class core.Class, sc scope.Scope) string {
	switch class {
	case core.ClassNoHistory:
		return "Run '" + strings.TrimSpace("wallhop "+scopeArg(sc)) + "' to fetch a wallpaper first"
	case core.ClassUnsupported:
		return fmt.Sprintf("Set desktop.name in the config or pass --desktop (%s)", strings.Join(platform.Registered(), ", "))
	case core.ClassDependency:
		return "Install the missing command and try again"
	case core.ClassValidation:
		return "Check the flags, or run 'wallhop show-config' to see the resolved settings"
	case core.ClassTimeout:
		return "Raise the timeout with --timeout or network.timeout_seconds"
	case core.ClassHistoryExhausted:
		return "Run 'wallhop " + scopeArg(sc) + "cleanup' to drop entries whose files are gone"
	}
	return ""
}

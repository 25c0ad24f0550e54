package core

import (
	"context"
	"errors"

	"github.com/darkawower/wallhop/internal/cache"
	"github.com/darkawower/wallhop/internal/config"
	"github.com/darkawower/wallhop/internal/datasource"
	"github.com/darkawower/wallhop/internal/history"
	"github.com/darkawower/wallhop/internal/lock"
	"github.com/darkawower/wallhop/internal/navigator"
	"github.com/darkawower/wallhop/internal/platform"
	"github.com/darkawower/wallhop/internal/provider"
	"github.com/darkawower/wallhop/internal/query"
	"github.com/darkawower/wallhop/internal/scope"
	"github.com/darkawower/wallhop/internal/wallpaper"
)

// ErrNoLocalDir is returned by LocalRandom when no local folder is configured.
var ErrNoLocalDir = errors.New("no local wallpaper directory configured")

// Class groups errors by how they are reported and which exit code they map to.
type Class string

const (
	ClassNone              Class = ""
	ClassBusy              Class = "busy"
	ClassNoHistory         Class = "no-history"
	ClassAtBoundary        Class = "at-boundary"
	ClassAllDuplicate      Class = "all-duplicate"
	ClassUpstreamExhausted Class = "upstream-exhausted"
	ClassUpstream          Class = "upstream"
	ClassTimeout           Class = "timeout"
	ClassNetwork           Class = "network"
	ClassIntegrity         Class = "integrity"
	ClassValidation        Class = "validation"
	ClassUnsupported       Class = "unsupported"
	ClassDependency        Class = "dependency"
	ClassHistoryExhausted  Class = "history-exhausted"
	ClassMissingFile       Class = "missing-file"
	ClassCanceled          Class = "canceled"
	ClassInternal          Class = "internal"
)

// Classify maps err onto its class.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, lock.ErrBusy), errors.Is(err, lock.ErrRateLimited):
		return ClassBusy
	case errors.Is(err, history.ErrNoHistory):
		return ClassNoHistory
	case errors.Is(err, navigator.ErrAtOldest), errors.Is(err, navigator.ErrAtNewest):
		return ClassAtBoundary
	case errors.Is(err, navigator.ErrHistoryExhausted):
		return ClassHistoryExhausted
	case errors.Is(err, cache.ErrAllDuplicate):
		return ClassAllDuplicate
	case errors.Is(err, datasource.ErrUpstreamExhausted):
		return ClassUpstreamExhausted
	case errors.Is(err, provider.ErrTimeout):
		return ClassTimeout
	case errors.Is(err, provider.ErrNetwork):
		return ClassNetwork
	case errors.Is(err, provider.ErrIntegrity):
		return ClassIntegrity
	case errors.Is(err, provider.ErrUpstream):
		return ClassUpstream
	case errors.Is(err, query.ErrInvalid), errors.Is(err, config.ErrInvalid), errors.Is(err, scope.ErrInvalid):
		return ClassValidation
	case errors.Is(err, platform.ErrUnsupported):
		return ClassUnsupported
	case errors.Is(err, platform.ErrMissingDependency):
		return ClassDependency
	case errors.Is(err, wallpaper.ErrMissingFile), errors.Is(err, datasource.ErrNoImages), errors.Is(err, ErrNoLocalDir):
		return ClassMissingFile
	case errors.Is(err, context.Canceled):
		return ClassCanceled
	default:
		return ClassInternal
	}
}

// Expected reports whether err is a normal outcome that still exits 0.
func Expected(err error) bool {
	switch Classify(err) {
	case ClassBusy, ClassAtBoundary, ClassAllDuplicate, ClassUpstreamExhausted:
		return true
	}
	return false
}

// Silent reports whether err should not be shown to the user at all.
func Silent(err error) bool {
	return Classify(err) == ClassBusy
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil || Expected(err) {
		return 0
	}
	return 1
}

// Title is a short human-readable heading for the class, used in
// notifications.
func (c Class) Title() string {
	switch c {
	case ClassNoHistory:
		return "No wallpaper history"
	case ClassAtBoundary:
		return "End of history"
	case ClassAllDuplicate:
		return "Nothing new on this page"
	case ClassUpstreamExhausted:
		return "Search exhausted"
	case ClassUpstream:
		return "Wallhaven error"
	case ClassTimeout:
		return "Request timed out"
	case ClassNetwork:
		return "Network error"
	case ClassIntegrity:
		return "Broken download"
	case ClassValidation:
		return "Invalid parameters"
	case ClassUnsupported:
		return "Unsupported desktop"
	case ClassDependency:
		return "Missing dependency"
	case ClassHistoryExhausted:
		return "History exhausted"
	case ClassMissingFile:
		return "Wallpaper not found"
	default:
		return "Wallpaper change failed"
	}
}

package ai

import (
	"log/slog"
	"sync/atomic"
)

// debugLoggingEnabled gates per-agent debug logs on the tick path.
// Checking an atomic is cheaper than asking the handler for its level
// for every agent every frame.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging turns per-agent debug logs on or off.
// Called once at startup from the process log level.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// EnableDebugForLevel enables debug logs when level is Debug or lower.
func EnableDebugForLevel(level slog.Level) {
	debugLoggingEnabled.Store(level <= slog.LevelDebug)
}

// IsDebugEnabled reports whether per-agent debug logs are on.
// Guard expensive log calls with it:
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("target acquired", "agent", id, "target", info.Ref)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}

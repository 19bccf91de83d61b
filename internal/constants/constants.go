// Package constants provides named constants used throughout selfsim.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Comparator thresholds
const (
	// SignificantChangeRatio is the relative change from default above which a
	// parameter is listed in the report. The comparison is strict.
	SignificantChangeRatio = 0.10

	// ConvergenceThreshold bounds the After-condition preference gaps used for
	// the convergence verdict.
	ConvergenceThreshold = 5.0

	// FloatTolerance absorbs representation error when comparing ratios.
	FloatTolerance = 1e-9
)

// Filesystem layout
const (
	// DirName is the per-project and per-user state directory.
	DirName = ".selfsim"

	// ConfigFileName is the YAML config file inside the user state directory.
	ConfigFileName = "config.yaml"

	// DatabaseFileName is the sqlite preset database inside the state directory.
	DatabaseFileName = "presets.db"

	// RunLogFileName receives JSONL run events at debug level and above.
	RunLogFileName = "runs.jsonl"
)

// HTTP view defaults
const (
	// DefaultServerAddr lets the OS pick a free port on loopback.
	DefaultServerAddr = "localhost:0"

	// DefaultRateLimit is the sustained API request rate per route (requests/sec).
	DefaultRateLimit = 20.0

	// DefaultRateBurst is the API burst size per route.
	DefaultRateBurst = 40
)

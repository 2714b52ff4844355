package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() while still printing a readable message.
var (
	// ErrNoHomeDomain is returned when no home domain is given on the command
	// line or in the configuration file.
	ErrNoHomeDomain = errors.New("no home domain specified: provide it as an argument or set homeDomain in the config file")

	// ErrInvalidHomeDomain is returned when the home domain cannot be
	// converted to an ASCII hostname.
	ErrInvalidHomeDomain = errors.New("invalid home domain")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxHops is returned when the maximum number of pages to visit
	// is not positive.
	ErrInvalidMaxHops = errors.New("invalid max hops: must be positive")

	// ErrInvalidTimeout is returned when the per-request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to fall back to the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidRequestRate is returned when requestsPerSecond is negative.
	// Use 0 for no pacing.
	ErrInvalidRequestRate = errors.New("invalid request rate: must be non-negative")

	// ErrInvalidProxyAddress is returned when the proxy address is not in
	// "host:port" format.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrEmptyOutputDir is returned when the output directory is empty.
	ErrEmptyOutputDir = errors.New("output directory must not be empty")
)

package reconcile

import "time"

// Config holds runtime limits for reconciliation runs.
type Config struct {
	// RunTimeoutSeconds bounds one full run (fetch, match, apply, commit).
	RunTimeoutSeconds int `mapstructure:"run_timeout_seconds" default:"120"`
	// CompareTTLSeconds is how long the flagged set of a compare run stays resolvable.
	CompareTTLSeconds int `mapstructure:"compare_ttl_seconds" default:"300"`
	// ArchiveSnapshots stores every raw BMC report in object storage.
	ArchiveSnapshots bool `mapstructure:"archive_snapshots" default:"false"`
}

// RunTimeout returns the run timeout, defaulting to two minutes.
func (c Config) RunTimeout() time.Duration {
	if c.RunTimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.RunTimeoutSeconds) * time.Second
}

// CompareTTL returns the compare cache TTL. Zero disables the cache.
func (c Config) CompareTTL() time.Duration {
	if c.CompareTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CompareTTLSeconds) * time.Second
}

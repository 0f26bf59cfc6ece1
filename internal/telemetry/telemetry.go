// Package telemetry provides lock-free counters for SDK-level metrics.
// The public snapshot view lives in the root package.
package telemetry

import "sync/atomic"

// Metric identifies a single counter.
type Metric uint8

const (
	// MetricRequests counts every request issued through a transport.
	MetricRequests Metric = iota
	// MetricUnauthorized counts 401 responses before any retry.
	MetricUnauthorized
	// MetricRefreshSuccess counts successful token refreshes.
	MetricRefreshSuccess
	// MetricRefreshFailure counts rejected or failed token refreshes.
	MetricRefreshFailure
	// MetricRetrySuccess counts requests that succeeded after a refresh.
	MetricRetrySuccess
	// MetricSessionExpired counts terminal 401s that cleared the session.
	MetricSessionExpired
	// MetricLoginSuccess counts successful logins (password or OTP).
	MetricLoginSuccess
	// MetricLoginFailure counts rejected credentials.
	MetricLoginFailure
	// MetricLogout counts user-initiated logouts.
	MetricLogout
	// MetricSessionRestored counts boot-time restores confirmed by the server.
	MetricSessionRestored
	// MetricOTPRequested counts OTP delivery requests.
	MetricOTPRequested
	// MetricOTPVerified counts accepted OTP codes.
	MetricOTPVerified
	// MetricOTPFailed counts rejected OTP codes.
	MetricOTPFailed

	metricCount
)

// Recorder holds the counters. The zero value is ready to use and a nil
// Recorder is a no-op, so packages can record unconditionally.
type Recorder struct {
	counters [metricCount]atomic.Uint64
}

// Inc increments the counter for m.
func (r *Recorder) Inc(m Metric) {
	if r == nil || m >= metricCount {
		return
	}
	r.counters[m].Add(1)
}

// Get returns the current value of the counter for m.
func (r *Recorder) Get(m Metric) uint64 {
	if r == nil || m >= metricCount {
		return 0
	}
	return r.counters[m].Load()
}

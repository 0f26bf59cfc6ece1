package storefront

import "github.com/bunhouse/storefront-go/internal/telemetry"

// MetricsSnapshot is a point-in-time view of the SDK counters.
type MetricsSnapshot struct {
	Requests         uint64
	Unauthorized     uint64
	RefreshSuccess   uint64
	RefreshFailure   uint64
	RetrySuccess     uint64
	SessionsExpired  uint64
	LoginSuccess     uint64
	LoginFailure     uint64
	Logouts          uint64
	SessionsRestored uint64
	OTPRequested     uint64
	OTPVerified      uint64
	OTPFailed        uint64
	AuditDropped     uint64
}

// Metrics returns the current counter values.
func (c *Client) Metrics() MetricsSnapshot {
	r := c.recorder
	return MetricsSnapshot{
		Requests:         r.Get(telemetry.MetricRequests),
		Unauthorized:     r.Get(telemetry.MetricUnauthorized),
		RefreshSuccess:   r.Get(telemetry.MetricRefreshSuccess),
		RefreshFailure:   r.Get(telemetry.MetricRefreshFailure),
		RetrySuccess:     r.Get(telemetry.MetricRetrySuccess),
		SessionsExpired:  r.Get(telemetry.MetricSessionExpired),
		LoginSuccess:     r.Get(telemetry.MetricLoginSuccess),
		LoginFailure:     r.Get(telemetry.MetricLoginFailure),
		Logouts:          r.Get(telemetry.MetricLogout),
		SessionsRestored: r.Get(telemetry.MetricSessionRestored),
		OTPRequested:     r.Get(telemetry.MetricOTPRequested),
		OTPVerified:      r.Get(telemetry.MetricOTPVerified),
		OTPFailed:        r.Get(telemetry.MetricOTPFailed),
		AuditDropped:     c.audit.Dropped(),
	}
}

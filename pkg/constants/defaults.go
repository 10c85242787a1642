package constants

import "time"

// RFC3339DateTimeFormat is used for every timestamp serialized to clients.
const RFC3339DateTimeFormat = "2006-01-02T15:04:05Z07:00"

// Router-wide rate limit applied when no override is bound.
const (
	DefaultRateLimitRequests      = 100
	DefaultRateLimitWindowMinutes = 1
)

// Stricter per-client limits for the endpoints that accept credentials or
// create records.
const (
	RegistrationSubmissionsPerMinute = 5
	LoginAttemptsPerMinute           = 5
)

// MonitoringRequestsPerMinute bounds the health and status probes per client.
const MonitoringRequestsPerMinute = 10

func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowMinutes) * time.Minute
}

package utils

import "strconv"

const defaultServiceName = "event-registration"

// IsTracingEnabled is false unless OTEL_TRACES_ENABLED parses as true.
func IsTracingEnabled() bool {
	return GetEnvBoolOrDefault("OTEL_TRACES_ENABLED", false)
}

func OTelServiceName() string {
	return GetEnvTrimmedOrDefault("OTEL_SERVICE_NAME", defaultServiceName)
}

// TraceSampleRatio reads OTEL_TRACES_SAMPLER_RATIO, clamped to [0, 1].
// Anything unparsable samples everything.
func TraceSampleRatio() float64 {
	raw := GetEnvTrimmed("OTEL_TRACES_SAMPLER_RATIO")
	if raw == "" {
		return 1
	}

	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 1
	}

	switch {
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	}
	return ratio
}

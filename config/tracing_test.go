package config

import (
	"testing"

	"github.com/akeren/event-registration/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOTLPEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    otlpTarget
		wantErr bool
	}{
		{name: "collector default", raw: "http://localhost:4318", want: otlpTarget{hostPort: "localhost:4318", path: "/v1/traces", insecure: true}},
		{name: "https keeps path", raw: "https://otel.example.org/custom/traces", want: otlpTarget{hostPort: "otel.example.org", path: "/custom/traces"}},
		{name: "bare host port", raw: " collector:4318 ", want: otlpTarget{hostPort: "collector:4318", path: "/v1/traces", insecure: true}},
		{name: "bare with path", raw: "collector:4318/v1/traces", wantErr: true},
		{name: "grpc scheme", raw: "grpc://collector:4317", wantErr: true},
		{name: "missing host", raw: "http:///v1/traces", wantErr: true},
		{name: "empty", raw: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOTLPEndpoint(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupTracing_DisabledReturnsNilShutdown(t *testing.T) {
	t.Setenv("OTEL_TRACES_ENABLED", "")

	shutdown, err := SetupTracing(log.NewLoggerWithJSONOutput())
	require.NoError(t, err)
	assert.Nil(t, shutdown)
}

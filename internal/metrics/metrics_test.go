package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/naijatrade/internal/config"
)

func TestParseHeaders(t *testing.T) {
	assert.Equal(t, map[string]string{"x-team": "abc", "dataset": "nt"}, ParseHeaders("x-team=abc, dataset=nt"))
	assert.Empty(t, ParseHeaders(""))
	assert.Empty(t, ParseHeaders("novalue"))
}

func TestFromTelemetry(t *testing.T) {
	var cfg Config
	for _, opt := range FromTelemetry(config.TelemetryConfig{ServiceName: "nt"}) {
		cfg = opt(cfg)
	}
	assert.Equal(t, "nt", cfg.ServiceName)
	require.Len(t, cfg.Provider, 1)
	assert.Equal(t, PrometheusProvider, cfg.Provider[0].Provider)

	cfg = Config{}
	for _, opt := range FromTelemetry(config.TelemetryConfig{OTLPEndpoint: "http://collector:4317", OTLPHeaders: "k=v"}) {
		cfg = opt(cfg)
	}
	require.Len(t, cfg.Provider, 2)
	assert.True(t, cfg.Provider[1].Insecure)
	assert.Equal(t, "v", cfg.Provider[1].Headers["k"])
}

func TestNewMetricProvider_RejectsUnknownProvider(t *testing.T) {
	_, err := NewMetricProvider(context.Background(), WithProviderConfig(ProviderCfg{Provider: "statsd"}))
	assert.Error(t, err)

	mp, err := NewMetricProvider(context.Background(), WithServiceName("nt"))
	require.NoError(t, err)
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

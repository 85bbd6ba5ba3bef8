package observability

import (
	"testing"

	"github.com/prefeitura-rio/app-cadastro/internal/config"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
)

func TestInitTracer_Disabled(t *testing.T) {
	tracerProvider = nil

	InitTracer(&config.Config{TracingEnabled: false})

	assert.Nil(t, tracerProvider)
}

func TestInitTracer_NilConfig(t *testing.T) {
	tracerProvider = nil

	InitTracer(nil)

	assert.Nil(t, tracerProvider)
}

func TestInitTracer_EnabledAndShutdown(t *testing.T) {
	// The exporter connects lazily, so an unreachable endpoint still builds a provider
	InitTracer(&config.Config{
		TracingEnabled:  true,
		TracingEndpoint: "127.0.0.1:4317",
		Environment:     "test",
	})

	assert.NotNil(t, tracerProvider)
	assert.NotNil(t, otel.GetTracerProvider())

	ShutdownTracer()
	assert.Nil(t, tracerProvider)
}

func TestShutdownTracer_NilProvider(t *testing.T) {
	tracerProvider = nil

	ShutdownTracer()
}

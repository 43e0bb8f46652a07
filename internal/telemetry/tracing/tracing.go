package tracing

import (
	"fmt"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"go.opentelemetry.io/otel"
)

var GlobalTracer = otel.Tracer("gymplan-backend")

// Setup configures the OpenTelemetry SDK via the otelconfig distro.
// Exporter endpoint, api keys etc. come from the standard OTEL_* env vars.
func Setup(enabled bool, serviceName string) (shutdown func(), err error) {
	if !enabled {
		return func() {}, nil
	}

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(serviceName),
	)
	if err != nil {
		return nil, fmt.Errorf("configure opentelemetry: %w", err)
	}

	return otelShutdown, nil
}

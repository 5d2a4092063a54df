// Package tracing wraps OpenTelemetry so the engine can annotate
// orchestrations and transitions with spans without every caller importing
// the upstream API. Applications that do not need tracing simply never
// initialise a provider and all spans become no-ops.
package tracing

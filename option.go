package claimkit

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/claimkit/claimkit/model"
	"github.com/claimkit/claimkit/service/agent"
	"github.com/claimkit/claimkit/service/dao"
	"github.com/claimkit/claimkit/service/event"
	"github.com/claimkit/claimkit/service/messaging"
	"github.com/claimkit/claimkit/service/monitor"
	"github.com/claimkit/claimkit/service/review"
	"github.com/claimkit/claimkit/tracing"
)

// Option customises the engine service.
type Option func(s *Service)

// WithConfig sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithAgents registers the agent collaborators in invocation order.
func WithAgents(agents ...agent.Agent) Option {
	return func(s *Service) {
		s.agents = append(s.agents, agents...)
	}
}

// WithClaimDAO sets the claim store.
func WithClaimDAO(claimDAO dao.Service[string, model.Claim]) Option {
	return func(s *Service) { s.claimDAO = claimDAO }
}

// WithEventService sets a pre-built event service.
func WithEventService(service *event.Service) Option {
	return func(s *Service) { s.eventService = service }
}

// WithQueueVendor selects the event queue vendor ("memory" or "fs").
func WithQueueVendor(vendor messaging.Vendor, options ...event.Option) Option {
	return func(s *Service) {
		s.queueVendor = vendor
		s.eventOptions = append(s.eventOptions, options...)
	}
}

// WithReviewService sets the human-review service.
func WithReviewService(svc review.Service) Option {
	return func(s *Service) { s.reviewService = svc }
}

// WithStateHandler registers an additional monitor handler fired when claims
// enter state.
func WithStateHandler(state model.ClaimState, handler monitor.Handler) Option {
	return func(s *Service) {
		s.handlers[state] = append(s.handlers[state], handler)
	}
}

// WithTracing configures OpenTelemetry tracing for the engine. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. Safe to call multiple times - the first successful
// initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter, enabling OTLP, Jaeger or Zipkin integrations. Safe to call
// multiple times - the first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}

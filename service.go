package claimkit

import (
	"github.com/claimkit/claimkit/machine"
	"github.com/claimkit/claimkit/model"
	"github.com/claimkit/claimkit/service/agent"
	"github.com/claimkit/claimkit/service/dao"
	cmemory "github.com/claimkit/claimkit/service/dao/claim/memory"
	"github.com/claimkit/claimkit/service/event"
	"github.com/claimkit/claimkit/service/messaging"
	"github.com/claimkit/claimkit/service/monitor"
	"github.com/claimkit/claimkit/service/orchestrator"
	"github.com/claimkit/claimkit/service/review"
	rmemory "github.com/claimkit/claimkit/service/review/memory"
)

// Service is the engine facade: it assembles the state machine, the
// orchestrator, the monitor and the pluggable storage/eventing collaborators
// behind one constructor.
type Service struct {
	runtime       *Runtime
	config        *Config
	agents        []agent.Agent
	claimDAO      dao.Service[string, model.Claim]
	eventService  *event.Service
	queueVendor   messaging.Vendor
	eventOptions  []event.Option
	reviewService review.Service
	handlers      map[model.ClaimState][]monitor.Handler
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.claimDAO == nil {
		s.claimDAO = cmemory.New()
	}
	if s.eventService == nil {
		if s.queueVendor == "" {
			s.queueVendor = "memory"
		}
		eventService, err := event.New(s.queueVendor, s.eventOptions...)
		if err != nil {
			return err
		}
		s.eventService = eventService
	}
	if len(s.agents) == 0 {
		s.agents = []agent.Agent{agent.NewHeuristic("heuristic", s.config.Heuristic.AmountThreshold)}
	}
	if s.reviewService == nil {
		s.reviewService = rmemory.New(rmemory.WithClaimDAO(s.claimDAO))
	}

	stateMachine := machine.New()
	orchestratorService := orchestrator.New(
		orchestrator.WithAgents(s.agents...),
		orchestrator.WithAgentTimeout(s.config.Orchestrator.AgentTimeout()),
		orchestrator.WithDecisionTTL(s.config.Orchestrator.DecisionTTL()),
	)
	monitorOptions := make([]monitor.Option, 0, len(s.handlers))
	for state, handlers := range s.handlers {
		for _, handler := range handlers {
			monitorOptions = append(monitorOptions, monitor.WithHandler(state, handler))
		}
	}
	monitorService := monitor.New(stateMachine, orchestratorService, monitorOptions...)

	s.runtime = &Runtime{
		machine:      stateMachine,
		orchestrator: orchestratorService,
		monitor:      monitorService,
		claimDAO:     s.claimDAO,
		events:       s.eventService,
		review:       s.reviewService,
	}
	return nil
}

// Runtime returns the engine runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Review returns the human-review service.
func (s *Service) Review() review.Service {
	return s.reviewService
}

// Events returns the event service claims publish through.
func (s *Service) Events() *event.Service {
	return s.eventService
}

// New creates an engine service.
func New(options ...Option) (*Service, error) {
	ret := &Service{handlers: make(map[model.ClaimState][]monitor.Handler)}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}

package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/claimkit/claimkit/internal/clock"
	"github.com/claimkit/claimkit/model"
	"github.com/claimkit/claimkit/policy"
	"github.com/claimkit/claimkit/service/agent"
	"github.com/claimkit/claimkit/tracing"
)

// Decision is one orchestration outcome: the routing verdict plus every
// collaborator verdict in registration order.
type Decision struct {
	ClaimID            string          `json:"claimID"`
	NeedsInvestigation bool            `json:"needsInvestigation"`
	Verdicts           []agent.Verdict `json:"verdicts"`
	EvaluatedAt        time.Time       `json:"evaluatedAt"`
}

// Failures returns the verdicts recorded for unavailable collaborators so
// callers can audit degraded orchestrations.
func (d *Decision) Failures() []agent.Verdict {
	var out []agent.Verdict
	for _, v := range d.Verdicts {
		if v.Failed() {
			out = append(out, v)
		}
	}
	return out
}

// Service sequences agent evaluations and aggregates their verdicts into a
// routing decision. It guarantees at most one in-flight evaluation per claim
// id; concurrent callers are rejected with ErrOrchestrationInProgress.
type Service struct {
	agents       []agent.Agent
	agentTimeout time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}

	// cache memoises the last decision per claim id so dashboards can
	// re-read it without re-invoking collaborators.
	cache *gocache.Cache
}

// Option customises the orchestrator.
type Option func(*Service)

// WithAgents registers the collaborators, in invocation order.
func WithAgents(agents ...agent.Agent) Option {
	return func(s *Service) {
		s.agents = append(s.agents, agents...)
	}
}

// WithAgentTimeout bounds each collaborator call.
func WithAgentTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.agentTimeout = timeout
	}
}

// WithDecisionTTL controls how long memoised decisions stay readable.
func WithDecisionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = gocache.New(ttl, 2*ttl)
	}
}

// DefaultAgentTimeout bounds a collaborator call when no timeout is
// configured.
const DefaultAgentTimeout = 30 * time.Second

const defaultDecisionTTL = 10 * time.Minute

// New creates an orchestrator.
func New(options ...Option) *Service {
	ret := &Service{
		agentTimeout: DefaultAgentTimeout,
		inflight:     make(map[string]struct{}),
	}
	for _, option := range options {
		option(ret)
	}
	if ret.cache == nil {
		ret.cache = gocache.New(defaultDecisionTTL, 2*defaultDecisionTTL)
	}
	return ret
}

// Agents returns the registered collaborators in invocation order.
func (s *Service) Agents() []agent.Agent {
	return s.agents
}

// LastDecision returns the memoised decision for a claim id, if still fresh.
func (s *Service) LastDecision(claimID string) (*Decision, bool) {
	v, ok := s.cache.Get(claimID)
	if !ok {
		return nil, false
	}
	return v.(*Decision), true
}

// Evaluate runs every registered agent against the claim and reduces their
// verdicts into a routing decision. Agent calls run concurrently, each under
// a bounded timeout; results are reassembled in registration order
// regardless of completion order. A failed call degrades into a
// Verdict with an error rationale - it neither aborts the orchestration nor
// forces investigation by itself.
func (s *Service) Evaluate(ctx context.Context, claim *model.Claim) (*Decision, error) {
	if claim == nil {
		return nil, ErrNoClaim
	}
	if err := s.acquire(claim.ID); err != nil {
		return nil, err
	}
	defer s.release(claim.ID)

	ctx, span := tracing.StartSpan(ctx, "orchestrator.Evaluate", "INTERNAL")
	span.WithAttributes(map[string]string{"claim.id": claim.ID})
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	runPolicy := policy.FromContext(ctx)
	timeout := s.agentTimeout
	if runPolicy != nil && runPolicy.AgentTimeout > 0 {
		timeout = runPolicy.AgentTimeout
	}

	verdicts := s.collect(ctx, claim, runPolicy, timeout)
	decision := &Decision{
		ClaimID:            claim.ID,
		NeedsInvestigation: reduce(claim, verdicts, runPolicy.EffectiveMode()),
		Verdicts:           verdicts,
		EvaluatedAt:        clock.Now(),
	}
	s.cache.SetDefault(claim.ID, decision)
	return decision, nil
}

// collect fans out to all agents and buffers the verdicts back into
// registration order.
func (s *Service) collect(ctx context.Context, claim *model.Claim, runPolicy *policy.Policy, timeout time.Duration) []agent.Verdict {
	type indexed struct {
		index   int
		verdict *agent.Verdict
	}
	results := make(chan indexed, len(s.agents))
	var wg sync.WaitGroup
	for i, a := range s.agents {
		if runPolicy.Skips(a.Name()) {
			continue
		}
		wg.Add(1)
		go func(index int, a agent.Agent) {
			defer wg.Done()
			agentCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			verdict, err := a.Evaluate(agentCtx, claim)
			if err != nil {
				verdict = agent.Degraded(a.Name(), fmt.Errorf("%w: %v", ErrAgentUnavailable, err))
			} else if verdict == nil {
				verdict = agent.Degraded(a.Name(), fmt.Errorf("%w: empty verdict", ErrAgentUnavailable))
			}
			results <- indexed{index: index, verdict: verdict}
		}(i, a)
	}
	wg.Wait()
	close(results)

	ordered := make([]*agent.Verdict, len(s.agents))
	for r := range results {
		ordered[r.index] = r.verdict
	}
	verdicts := make([]agent.Verdict, 0, len(s.agents))
	for _, v := range ordered {
		if v != nil {
			verdicts = append(verdicts, *v)
		}
	}
	return verdicts
}

// reduce combines the static advisory flag with the collected verdicts. The
// default mode is the conservative OR: investigation triggers when either
// source says yes. A degraded verdict never contributes a yes, and never
// clears the static flag either.
func reduce(claim *model.Claim, verdicts []agent.Verdict, mode string) bool {
	if claim.RequiresInvestigation {
		return true
	}
	successful := 0
	suspicious := 0
	for _, v := range verdicts {
		if v.Failed() {
			continue
		}
		successful++
		if v.Suspicious {
			suspicious++
		}
	}
	switch mode {
	case policy.ModeAll:
		return successful > 0 && suspicious == successful
	default:
		return suspicious > 0
	}
}

func (s *Service) acquire(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return fmt.Errorf("%w: claim %v", ErrOrchestrationInProgress, id)
	}
	s.inflight[id] = struct{}{}
	return nil
}

func (s *Service) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

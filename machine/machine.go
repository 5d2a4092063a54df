package machine

import (
	"fmt"
	"sync"

	"github.com/claimkit/claimkit/model"
)

// insertion is the single pending-insertion slot of one claim: the spliced
// state and the state it yields to once entered.
type insertion struct {
	state  model.ClaimState
	before model.ClaimState
}

// Service validates and applies claim state transitions. The static
// transition table is shared and read-only; all per-claim routing overrides
// live in the pending map keyed by claim id, so claims never interfere with
// each other.
type Service struct {
	mu      sync.Mutex
	pending map[string]*insertion
	locks   map[string]*sync.Mutex
}

// New creates a state machine service.
func New() *Service {
	return &Service{
		pending: make(map[string]*insertion),
		locks:   make(map[string]*sync.Mutex),
	}
}

// claimLock returns the mutex serialising all mutations of one claim.
func (s *Service) claimLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

// Pending returns the staged insertion for the claim id, if any.
func (s *Service) Pending(id string) (model.ClaimState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.pending[id]
	if !ok {
		return "", false
	}
	return slot.state, true
}

// AllowedNext returns the states the claim may transition to right now. A
// pending insertion takes priority over the static table: until the inserted
// state is entered it is the only valid target. From an insertion-only state
// the dynamic hand-back edges apply.
func (s *Service) AllowedNext(claim *model.Claim) []model.ClaimState {
	if claim == nil {
		return nil
	}
	if state, ok := s.Pending(claim.ID); ok {
		return []model.ClaimState{state}
	}
	current := claim.State()
	next := model.AllowedNext(current)
	if len(next) == 0 && !current.Terminal() {
		next = model.DynamicNext(current)
	}
	return next
}

// NextState resolves the claim's next state: the staged insertion when one
// is pending, otherwise the first static successor. The second return value
// is false when the claim is terminal.
func (s *Service) NextState(claim *model.Claim) (model.ClaimState, bool) {
	next := s.AllowedNext(claim)
	if len(next) == 0 {
		return "", false
	}
	return next[0], true
}

// Transition moves the claim to target. It fails with ErrTerminalState when
// the claim is final, and with ErrInvalidTransition unless target is either
// statically reachable or was staged by a prior InsertState call. On failure
// the claim is left unmodified.
func (s *Service) Transition(claim *model.Claim, target model.ClaimState) error {
	if claim == nil {
		return fmt.Errorf("%w: nil claim", ErrInvalidTransition)
	}
	lock := s.claimLock(claim.ID)
	lock.Lock()
	defer lock.Unlock()

	current := claim.State()
	if current.Terminal() {
		return fmt.Errorf("%w: claim %v already reached %v", ErrTerminalState, claim.ID, current)
	}

	s.mu.Lock()
	slot := s.pending[claim.ID]
	s.mu.Unlock()

	if slot != nil {
		if target != slot.state {
			return fmt.Errorf("%w: claim %v must enter %v before %v", ErrInvalidTransition, claim.ID, slot.state, target)
		}
	} else if !contains(model.AllowedNext(current), target) && !model.CanInsert(current, target) {
		return fmt.Errorf("%w: %v -> %v for claim %v", ErrInvalidTransition, current, target, claim.ID)
	}

	claim.RecordState(target)

	// The staged insertion is consumed exactly once, when its state is entered.
	if slot != nil {
		s.mu.Lock()
		delete(s.pending, claim.ID)
		s.mu.Unlock()
	}
	return nil
}

// InsertState splices newState into the claim's forward path so that the
// claim enters newState before beforeState. At most one insertion may be
// pending per claim; a second call fails with ErrInsertionConflict
// (first-inserted-wins). Inserting a state the claim already visited fails
// with ErrInvalidInsertion - no state may recur.
func (s *Service) InsertState(claim *model.Claim, newState, beforeState model.ClaimState) error {
	if claim == nil {
		return fmt.Errorf("%w: nil claim", ErrInvalidInsertion)
	}
	lock := s.claimLock(claim.ID)
	lock.Lock()
	defer lock.Unlock()

	if !newState.Valid() {
		return fmt.Errorf("%w: unknown state %v", ErrInvalidInsertion, newState)
	}
	if !model.CanInsert(newState, beforeState) {
		return fmt.Errorf("%w: %v does not lead to %v", ErrInvalidInsertion, newState, beforeState)
	}
	if claim.State().Terminal() {
		return fmt.Errorf("%w: claim %v already reached %v", ErrTerminalState, claim.ID, claim.State())
	}
	if claim.Visited(newState) {
		return fmt.Errorf("%w: claim %v already entered %v", ErrInvalidInsertion, claim.ID, newState)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.pending[claim.ID]; existing != nil {
		return fmt.Errorf("%w: claim %v already stages %v", ErrInsertionConflict, claim.ID, existing.state)
	}
	s.pending[claim.ID] = &insertion{state: newState, before: beforeState}
	return nil
}

// Release drops any per-claim bookkeeping. Intended for callers that archive
// or delete claims at the storage layer.
func (s *Service) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
	delete(s.locks, id)
}

func contains(states []model.ClaimState, target model.ClaimState) bool {
	for _, s := range states {
		if s == target {
			return true
		}
	}
	return false
}

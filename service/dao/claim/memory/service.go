package memory

import (
	"context"
	"sync"

	"github.com/claimkit/claimkit/model"
	"github.com/claimkit/claimkit/service/dao"
	"github.com/claimkit/claimkit/service/dao/criteria"
)

// Service implements an in-memory, thread-safe claim store. Save merges into
// the already-stored instance so that references handed out earlier keep
// observing the claim's progression.
type Service struct {
	claims map[string]*model.Claim
	mux    sync.RWMutex
}

var _ dao.Service[string, model.Claim] = (*Service)(nil)

func (s *Service) Save(_ context.Context, claim *model.Claim) error {
	if claim == nil {
		return dao.ErrNilEntity
	}
	if claim.ID == "" {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if existing, ok := s.claims[claim.ID]; ok && existing != claim {
		existing.CopyFrom(claim)
	} else {
		s.claims[claim.ID] = claim
	}
	return nil
}

func (s *Service) Load(_ context.Context, id string) (*model.Claim, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mux.RLock()
	claim, ok := s.claims[id]
	s.mux.RUnlock()

	if !ok {
		return nil, dao.ErrNotFound
	}
	return claim, nil
}

func (s *Service) Delete(_ context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if _, ok := s.claims[id]; !ok {
		return dao.ErrNotFound
	}
	delete(s.claims, id)
	return nil
}

func (s *Service) List(_ context.Context, parameters ...*dao.Parameter) ([]*model.Claim, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	out := make([]*model.Claim, 0, len(s.claims))
	for _, claim := range s.claims {
		if !criteria.FilterByState(claim.State(), parameters) {
			continue
		}
		out = append(out, claim)
	}
	return out, nil
}

func New() *Service {
	return &Service{claims: map[string]*model.Claim{}}
}

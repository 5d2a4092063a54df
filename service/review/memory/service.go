package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/claimkit/claimkit/internal/clock"
	"github.com/claimkit/claimkit/internal/idgen"
	"github.com/claimkit/claimkit/model"
	"github.com/claimkit/claimkit/service/dao"
	"github.com/claimkit/claimkit/service/dao/store"
	"github.com/claimkit/claimkit/service/messaging"
	qmem "github.com/claimkit/claimkit/service/messaging/memory"
	"github.com/claimkit/claimkit/service/review"
)

type service struct {
	// DAO-backed stores
	reqDAO dao.Service[string, review.Request]
	decDAO dao.Service[string, review.Decision]

	// fan-out queue
	events messaging.Queue[review.Event]

	// owning claim store (optional - only needed when the decision should be
	// recorded on the claim as a human override).
	claimDao dao.Service[string, model.Claim]
}

func reqKey(r *review.Request) string  { return r.ID }
func decKey(d *review.Decision) string { return d.ID }

// New creates an in-memory review service.
func New(options ...Option) review.Service {
	ret := &service{
		reqDAO: store.NewMemoryStore[string, review.Request](reqKey),
		decDAO: store.NewMemoryStore[string, review.Decision](decKey),
		events: qmem.NewQueue[review.Event](qmem.DefaultConfig()),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (s *service) RequestReview(ctx context.Context, r *review.Request) error {
	if r == nil || r.ClaimID == "" {
		return errors.New("invalid review request")
	}
	if r.ID == "" {
		r.ID = idgen.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = clock.Now()
	}

	// Idempotent save - overwrite any previous copy to handle re-submissions
	// gracefully.
	_ = s.reqDAO.Save(ctx, r)
	_ = s.events.Publish(ctx, &review.Event{Topic: review.TopicRequestCreated, Data: r})
	return nil
}

func (s *service) ListPending(ctx context.Context) ([]*review.Request, error) {
	all, err := s.reqDAO.List(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]*review.Request, 0, len(all))
	for _, r := range all {
		if d, _ := s.decDAO.Load(ctx, r.ID); d == nil {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

func (s *service) Decide(ctx context.Context, id string, approved bool, reason string) (*review.Decision, error) {
	if id == "" {
		return nil, errors.New("empty id")
	}
	request, _ := s.reqDAO.Load(ctx, id)
	if request == nil {
		return nil, fmt.Errorf("review request %s not found", id)
	}
	if d, _ := s.decDAO.Load(ctx, id); d != nil {
		return nil, fmt.Errorf("already decided")
	}

	// When a claim store is attached, stamp the override and an audit entry
	// onto the claim so the decision survives with the record.
	if s.claimDao != nil {
		claim, err := s.claimDao.Load(ctx, request.ClaimID)
		if err != nil && !errors.Is(err, dao.ErrNotFound) {
			return nil, err
		}
		if claim != nil {
			outcome := review.OutcomeApproved
			if !approved {
				outcome = review.OutcomeRejected
			}
			claim.SetHumanOverride(outcome)
			claim.AddAuditEntry("reviewer", outcome, reason, nil)
			if err = s.claimDao.Save(ctx, claim); err != nil {
				return nil, err
			}
		}
	}

	d := &review.Decision{
		ID:        id,
		ClaimID:   request.ClaimID,
		Approved:  approved,
		Reason:    reason,
		DecidedAt: clock.Now(),
	}
	_ = s.decDAO.Save(ctx, d)
	_ = s.events.Publish(ctx, &review.Event{Topic: review.TopicDecisionCreated, Data: d})
	return d, nil
}

func (s *service) Queue() messaging.Queue[review.Event] { return s.events }

var _ review.Service = (*service)(nil)

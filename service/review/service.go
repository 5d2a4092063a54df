package review

import (
	"context"

	"github.com/claimkit/claimkit/service/messaging"
)

// Service defines the human-review boundary: pending investigations wait for
// an operator decision which is recorded on the claim as an override.
type Service interface {
	RequestReview(ctx context.Context, r *Request) error
	ListPending(ctx context.Context) ([]*Request, error)
	Decide(ctx context.Context, id string, approved bool, reason string) (*Decision, error)
	Queue() messaging.Queue[Event]
}

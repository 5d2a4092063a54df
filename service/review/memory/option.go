package memory

import (
	"github.com/claimkit/claimkit/model"
	"github.com/claimkit/claimkit/service/dao"
)

type Option func(*service)

// WithClaimDAO lets the review service record the decision on the claim as a
// human override when one is made.
func WithClaimDAO(claimDao dao.Service[string, model.Claim]) Option {
	return func(s *service) { s.claimDao = claimDao }
}

package criteria

import (
	"github.com/claimkit/claimkit/model"
	"github.com/claimkit/claimkit/service/dao"
)

// FilterByState matches a claim state against an optional "State" List
// parameter carrying either a single value or a set.
func FilterByState(state model.ClaimState, parameters []*dao.Parameter) bool {
	switch len(parameters) {
	case 0:
		return true
	case 1:
		if parameters[0].Name == "State" {
			switch actual := parameters[0].Value.(type) {
			case string:
				return state == model.ClaimState(actual)
			case model.ClaimState:
				return state == actual
			case []string:
				for _, s := range actual {
					if state == model.ClaimState(s) {
						return true
					}
				}
				return false
			}
		}
	}
	return true
}

// Package monitor observes state-entry events and drives dynamic routing: on
// entry into review it invokes the orchestrator and, when the decision calls
// for it, inserts the fraud-investigation state into the claim's path. It is
// the only component permitted to call InsertState.
package monitor

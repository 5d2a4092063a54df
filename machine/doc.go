// Package machine implements the claim state machine: transition validation
// against the shared static table plus dynamic insertion of a state ahead of
// one claim's forward path via a per-claim pending slot.
package machine

// Package model defines the claim domain model: the closed state set, the
// immutable static transition table and the Claim record mutated in place by
// the state machine.
package model

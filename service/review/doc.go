// Package review provides an optional human-in-the-loop layer: a fraud
// investigation can park a claim behind a review request until an operator
// approves or rejects it, recording the outcome as an override on the claim.
package review

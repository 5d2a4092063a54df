// Package orchestrator coordinates the agent collaborators: it fans one
// claim out to every registered agent concurrently, buffers the verdicts
// back into invocation order and reduces them - together with the claim's
// advisory flag - into a single routing decision.
package orchestrator

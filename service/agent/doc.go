// Package agent defines the collaborator boundary consumed by the
// orchestrator: the Agent interface, the Verdict shape and a deterministic
// heuristic implementation. Remote adapters live in sub-packages.
package agent

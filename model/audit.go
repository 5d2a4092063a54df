package model

import "time"

// AuditEntry records a single decision taken on a claim, keeping the routing
// explainable after the fact.
type AuditEntry struct {
	AgentName  string    `json:"agentName" yaml:"agentName"`
	Decision   string    `json:"decision" yaml:"decision"`
	Reasoning  string    `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
	Confidence *float64  `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
}

// Package idgen wraps the UUID generator so it can be stubbed in tests.
// Callers must treat identifiers as opaque strings.
package idgen

// Package gator turns natural-language requests into tool action proposals,
// gates the risky ones behind explicit human approval and executes the rest,
// recording every transition so that no action ever runs twice.
//
// The package root wires the building blocks together: a proposer that maps
// requests to tool calls, a policy engine that decides who may run what, an
// action store with compare-and-swap transitions, a tool runner backed by an
// extensible action registry and an event stream for audit consumers. Use
// New to assemble a runtime with in-memory defaults, or NewFromConfig to
// drive the store and event journal from configuration.
package gator

// Package action defines the action lifecycle data model: a proposed
// side-effecting tool invocation, its risk tier, its authoritative lifecycle
// status and the opaque result contract of tool execution.
package action

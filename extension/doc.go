// Package extension provides the run-time registry of tool services and the
// Go types their inputs and outputs are declared with. Tools are registered
// at service construction and looked up by symbolic name when an approved
// action executes.
package extension

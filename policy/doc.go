// Package policy implements the decision engine that gates tool execution.
// It maps an (actor, tool, arguments) triple to an allow/deny decision with a
// reason code; a tool without a rule is denied by default. Rules can be
// overridden at runtime per tool, from the environment or from a YAML
// document.
package policy

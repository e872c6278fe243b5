// Package tool provides the built-in tool services and the runner that
// invokes them through the `(tool, args) -> {ok, output, error}` contract.
// Tool implementations are opaque to the lifecycle manager; the runner
// guarantees that no tool failure, including a panic, ever escapes to the
// caller.
package tool

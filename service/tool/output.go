package tool

import (
	maction "github.com/viant/gator/model/action"
)

// Output is the common part of every built-in tool output. Concrete tools
// embed it and fill in the human readable message; Ok defaults to false so a
// tool has to succeed explicitly.
type Output struct {
	Message string `json:"message"`
	Ok      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// Done marks the output successful with the supplied message.
func (o *Output) Done(message string) {
	o.Ok = true
	o.Message = message
	o.Error = ""
}

// Failed marks the output failed with a reason.
func (o *Output) Failed(message string) {
	o.Ok = false
	o.Error = message
}

// Result renders the output as the opaque tool contract.
func (o *Output) Result(tool string) *maction.ToolResult {
	return &maction.ToolResult{
		Tool:   tool,
		Ok:     o.Ok,
		Output: o.Message,
		Error:  o.Error,
	}
}

// ResultProvider is implemented by tool outputs able to render themselves as
// a ToolResult; embedding Output provides it.
type ResultProvider interface {
	Result(tool string) *maction.ToolResult
}

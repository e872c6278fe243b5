package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/viant/gator/extension"
	maction "github.com/viant/gator/model/action"
	"github.com/viant/structology/conv"
)

// RunMethod is the method every tool service exposes for execution.
const RunMethod = "run"

// ErrorUnknownTool is the error string reported when no service is
// registered for a tool name.
const ErrorUnknownTool = "unknown_tool"

// Runner bridges the (tool, args) contract with registered tool services: it
// looks the service up, converts the raw argument map into the typed input,
// invokes the method and renders the typed output back as a ToolResult.
//
// Run never returns an error or panics to the caller; every failure mode is
// expressed inside the ToolResult so that the coordinator can record it as a
// FAILED transition.
type Runner struct {
	actions   *extension.Actions
	converter *conv.Converter
}

// NewRunner creates a runner over the supplied registry.
func NewRunner(actions *extension.Actions) *Runner {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true
	return &Runner{
		actions:   actions,
		converter: conv.NewConverter(options),
	}
}

// Actions exposes the underlying registry.
func (r *Runner) Actions() *extension.Actions {
	return r.actions
}

// Run executes the named tool with the supplied arguments.
func (r *Runner) Run(ctx context.Context, tool string, args map[string]interface{}) (result *maction.ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = &maction.ToolResult{Tool: tool, Ok: false, Output: "", Error: fmt.Sprintf("%v", rec)}
		}
	}()

	service := r.actions.Lookup(tool)
	if service == nil {
		return &maction.ToolResult{Tool: tool, Ok: false, Output: "", Error: ErrorUnknownTool}
	}
	signature := service.Methods().Lookup(RunMethod)
	if signature == nil {
		return &maction.ToolResult{Tool: tool, Ok: false, Output: "", Error: ErrorUnknownTool}
	}
	method, err := service.Method(RunMethod)
	if err != nil {
		return &maction.ToolResult{Tool: tool, Ok: false, Output: "", Error: err.Error()}
	}

	input := newInstance(signature.Input)
	if args == nil {
		args = map[string]interface{}{}
	}
	if err := r.converter.Convert(args, input); err != nil {
		return &maction.ToolResult{Tool: tool, Ok: false, Output: "", Error: fmt.Sprintf("invalid args: %v", err)}
	}
	output := newInstance(signature.Output)
	if err := method(ctx, input, output); err != nil {
		return &maction.ToolResult{Tool: tool, Ok: false, Output: "", Error: err.Error()}
	}
	return renderResult(tool, output)
}

func renderResult(tool string, output interface{}) *maction.ToolResult {
	if provider, ok := output.(ResultProvider); ok {
		return provider.Result(tool)
	}
	data, _ := json.Marshal(output)
	return &maction.ToolResult{Tool: tool, Ok: true, Output: string(data)}
}

func newInstance(aType reflect.Type) interface{} {
	if aType.Kind() == reflect.Ptr {
		aType = aType.Elem()
	}
	return reflect.New(aType).Interface()
}

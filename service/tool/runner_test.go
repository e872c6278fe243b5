package tool_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/gator/service/tool"
	"github.com/viant/gator/service/tool/builtin"

	"github.com/viant/gator/extension"
)

func TestRunner_Run(t *testing.T) {
	actions := extension.NewActions()
	builtin.Register(actions)
	runner := tool.NewRunner(actions)
	ctx := context.Background()

	testCases := []struct {
		description string
		tool        string
		args        map[string]interface{}
		expectOk    bool
		expect      string
		expectError string
	}{
		{
			description: "kb search echoes query",
			tool:        "kb_search",
			args:        map[string]interface{}{"query": "disk full"},
			expectOk:    true,
			expect:      "Found KB snippets for 'disk full'.",
		},
		{
			description: "ticket defaults summary",
			tool:        "create_ticket",
			args:        map[string]interface{}{},
			expectOk:    true,
			expect:      "Created ticket: No summary provided.",
		},
		{
			description: "runbook defaults topic",
			tool:        "generate_runbook",
			args:        nil,
			expectOk:    true,
			expect:      "Generated runbook for general.",
		},
		{
			description: "notify uses channel and message",
			tool:        "notify",
			args:        map[string]interface{}{"channel": "oncall", "message": "paging"},
			expectOk:    true,
			expect:      "Notified oncall: paging",
		},
		{
			description: "restart reports simulated restart",
			tool:        "restart_service",
			args:        map[string]interface{}{"service": "payments-api", "environment": "prod"},
			expectOk:    true,
			expect:      "Restarted payments-api in prod.",
		},
		{
			description: "unknown tool",
			tool:        "launch_rocket",
			args:        map[string]interface{}{},
			expectOk:    false,
			expectError: tool.ErrorUnknownTool,
		},
	}

	for _, testCase := range testCases {
		result := runner.Run(ctx, testCase.tool, testCase.args)
		if !assert.NotNil(t, result, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.tool, result.Tool, testCase.description)
		assert.EqualValues(t, testCase.expectOk, result.Ok, testCase.description)
		assert.EqualValues(t, testCase.expect, result.Output, testCase.description)
		assert.EqualValues(t, testCase.expectError, result.Error, testCase.description)
	}
}

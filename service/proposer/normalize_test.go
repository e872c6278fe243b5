package proposer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWebhookArgs(t *testing.T) {
	testCases := []struct {
		description string
		question    string
		args        map[string]interface{}
		expectURL   interface{}
		expect      map[string]interface{}
	}{
		{
			description: "labeled url beats plain url",
			question:    "see https://docs.example.com then url: https://hooks.example.com/a",
			args:        map[string]interface{}{},
			expectURL:   "https://hooks.example.com/a",
			expect:      map[string]interface{}{"message": "see https://docs.example.com then url: https://hooks.example.com/a"},
		},
		{
			description: "plain url fallback with trailing punctuation",
			question:    "deliver to https://hooks.example.com/b).",
			args:        map[string]interface{}{},
			expectURL:   "https://hooks.example.com/b",
			expect:      map[string]interface{}{"message": "deliver to https://hooks.example.com/b)."},
		},
		{
			description: "existing url preserved",
			question:    "send to https://other.example.com",
			args:        map[string]interface{}{"url": "https://keep.example.com"},
			expectURL:   "https://keep.example.com",
			expect:      map[string]interface{}{"message": "send to https://other.example.com"},
		},
		{
			description: "payload object extracted from question",
			question:    `notify with payload: {"level": "p1", "count": 2}`,
			args:        map[string]interface{}{},
			expectURL:   nil,
			expect:      map[string]interface{}{"level": "p1", "count": float64(2)},
		},
		{
			description: "string payload wrapped as message",
			question:    "ping",
			args:        map[string]interface{}{"payload": "all good"},
			expectURL:   nil,
			expect:      map[string]interface{}{"message": "all good"},
		},
		{
			description: "message only payload upgraded from embedded json",
			question:    "irrelevant",
			args: map[string]interface{}{
				"payload": map[string]interface{}{"message": `payload={"alert":"disk"}`},
			},
			expectURL: nil,
			expect:    map[string]interface{}{"alert": "disk"},
		},
		{
			description: "structured payload preserved",
			question:    "anything",
			args: map[string]interface{}{
				"payload": map[string]interface{}{"message": "hi", "severity": "low"},
			},
			expectURL: nil,
			expect:    map[string]interface{}{"message": "hi", "severity": "low"},
		},
	}

	for _, testCase := range testCases {
		normalized := NormalizeWebhookArgs(testCase.question, testCase.args)
		assert.EqualValues(t, testCase.expectURL, normalized["url"], testCase.description)
		assert.EqualValues(t, testCase.expect, normalized["payload"], testCase.description)
	}
}

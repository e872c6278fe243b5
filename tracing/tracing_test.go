package tracing

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracing_SpansReachExporter(t *testing.T) {
	output := filepath.Join("testdata", "span_test.txt")
	_ = os.MkdirAll("testdata", 0o755)
	_ = os.Remove(output)

	if !assert.Nil(t, Init("gator", "0.0.1", output)) {
		return
	}

	ctx, span := StartSpan(context.Background(), "approve", "SERVER")
	span.WithAttributes(map[string]string{"action_id": "act-1"})
	span.SetStatusFromHTTPCode(http.StatusOK)

	carried, ok := SpanFromContext(ctx)
	assert.True(t, ok)
	assert.EqualValues(t, span, carried)

	EndSpan(span, nil)

	data, err := os.ReadFile(output)
	assert.Nil(t, err)
	assert.NotEmpty(t, data)
}

func TestTracing_ErrorStatus(t *testing.T) {
	output := filepath.Join("testdata", "span_error.txt")
	_ = os.MkdirAll("testdata", 0o755)
	_ = os.Remove(output)
	if !assert.Nil(t, Init("gator", "0.0.1", output)) {
		return
	}
	_, span := StartSpan(context.Background(), "execute", "INTERNAL")
	EndSpan(span, fmt.Errorf("tool_failed"))

	nilSafe := (*Span)(nil)
	nilSafe.WithAttributes(map[string]string{"k": "v"})
	EndSpan(nilSafe, nil)
}

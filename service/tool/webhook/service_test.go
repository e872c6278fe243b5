package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(request *http.Request) (*http.Response, error) {
	return f(request)
}

func publicLookup(ctx context.Context, host string) ([]net.IPAddr, error) {
	return []net.IPAddr{{IP: net.ParseIP("93.184.216.34")}}, nil
}

func loopbackLookup(ctx context.Context, host string) ([]net.IPAddr, error) {
	return []net.IPAddr{{IP: net.ParseIP("127.0.0.1")}}, nil
}

func TestService_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers payload", func(t *testing.T) {
		var gotBody string
		var gotContentType string
		client := &http.Client{Transport: roundTripperFunc(func(request *http.Request) (*http.Response, error) {
			data, _ := io.ReadAll(request.Body)
			gotBody = string(data)
			gotContentType = request.Header.Get("Content-Type")
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"ok":true}`)),
				Header:     http.Header{},
			}, nil
		})}
		srv := New(WithClient(client), WithLookup(publicLookup))
		output := &Output{}
		input := &Input{URL: "https://example.com/hook", Payload: map[string]interface{}{"ping": "pong"}}
		err := srv.run(ctx, input, output)
		assert.Nil(t, err)
		assert.True(t, output.Ok)
		assert.EqualValues(t, http.StatusOK, output.StatusCode)
		assert.EqualValues(t, "application/json", gotContentType)
		assert.EqualValues(t, `{"ping":"pong"}`, gotBody)

		var rendered delivery
		assert.Nil(t, json.Unmarshal([]byte(output.Message), &rendered))
		assert.EqualValues(t, http.StatusOK, rendered.StatusCode)
		assert.EqualValues(t, `{"ok":true}`, rendered.TruncatedBody)
	})

	t.Run("blocks private destinations", func(t *testing.T) {
		srv := New(WithLookup(loopbackLookup))
		output := &Output{}
		input := &Input{URL: "https://example.com/hook"}
		err := srv.run(ctx, input, output)
		assert.Nil(t, err)
		assert.False(t, output.Ok)
		assert.EqualValues(t, errorBlockedIP, output.Error)
	})

	t.Run("blocks loopback literal", func(t *testing.T) {
		srv := New()
		output := &Output{}
		input := &Input{URL: "http://127.0.0.1:8080/hook"}
		err := srv.run(ctx, input, output)
		assert.Nil(t, err)
		assert.False(t, output.Ok)
		assert.EqualValues(t, errorBlockedIP, output.Error)
	})

	t.Run("reports non success status", func(t *testing.T) {
		client := &http.Client{Transport: roundTripperFunc(func(request *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusBadGateway,
				Body:       io.NopCloser(strings.NewReader(`upstream down`)),
				Header:     http.Header{},
			}, nil
		})}
		srv := New(WithClient(client), WithLookup(publicLookup))
		output := &Output{}
		input := &Input{URL: "https://example.com/hook"}
		err := srv.run(ctx, input, output)
		assert.Nil(t, err)
		assert.False(t, output.Ok)
		assert.EqualValues(t, "status_502", output.Error)
	})

	t.Run("rejects empty url", func(t *testing.T) {
		srv := New()
		output := &Output{}
		err := srv.run(ctx, &Input{}, output)
		assert.NotNil(t, err)
	})
}

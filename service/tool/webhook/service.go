package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/viant/gator/model/types"
	"github.com/viant/gator/service/tool"
	"github.com/viant/scy"
)

const name = "http_post"

const (
	errorBlockedIP  = "blocked_ip"
	errorInvalidURL = "invalid_url"
	errorRequest    = "request_failed"

	maxBodyPreview = 2048
)

// LookupFunc resolves a hostname to candidate addresses.
type LookupFunc func(ctx context.Context, host string) ([]net.IPAddr, error)

type Input struct {
	URL     string                 `json:"url"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Headers map[string]string      `json:"headers,omitempty"`
	// SecretURL optionally points at an encrypted bearer token resolved
	// through the secret service and attached as an Authorization header.
	SecretURL string `json:"secretURL,omitempty"`
	SecretKey string `json:"secretKey,omitempty"`
	TimeoutMs int    `json:"timeoutMs,omitempty"`
}

func (i *Input) Init() {
	if i.TimeoutMs == 0 {
		i.TimeoutMs = int(10 * time.Second / time.Millisecond)
	}
	if i.Payload == nil {
		i.Payload = map[string]interface{}{}
	}
}

func (i *Input) Validate() error {
	if strings.TrimSpace(i.URL) == "" {
		return fmt.Errorf("url was empty")
	}
	return nil
}

// Output represents the webhook delivery outcome.
type Output struct {
	tool.Output
	StatusCode int `json:"statusCode,omitempty"`
}

// delivery is the JSON rendered into the tool result output on success.
type delivery struct {
	StatusCode    int    `json:"status_code"`
	TruncatedBody string `json:"truncated_body"`
	ElapsedMs     int64  `json:"elapsed_ms"`
}

// Service posts JSON payloads to external webhooks. Destinations resolving to
// private or loopback addresses are refused.
type Service struct {
	client  *http.Client
	lookup  LookupFunc
	secrets *scy.Service
}

// Option customises the webhook service.
type Option func(*Service)

// WithClient overrides the HTTP client.
func WithClient(client *http.Client) Option {
	return func(s *Service) { s.client = client }
}

// WithLookup overrides address resolution.
func WithLookup(lookup LookupFunc) Option {
	return func(s *Service) { s.lookup = lookup }
}

// New creates a new webhook service
func New(options ...Option) *Service {
	ret := &Service{
		client:  &http.Client{},
		secrets: scy.New(),
	}
	ret.lookup = func(ctx context.Context, host string) ([]net.IPAddr, error) {
		return net.DefaultResolver.LookupIPAddr(ctx, host)
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        tool.RunMethod,
			Description: "Posts a JSON payload to the given URL.",
			Input:       reflect.TypeOf(&Input{}),
			Output:      reflect.TypeOf(&Output{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case tool.RunMethod:
		return s.run, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) run(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	input.Init()
	if err := input.Validate(); err != nil {
		return err
	}

	parsed, err := url.Parse(input.URL)
	if err != nil || parsed.Hostname() == "" {
		output.Failed(errorInvalidURL)
		return nil
	}
	blocked, err := s.destinationBlocked(ctx, parsed.Hostname())
	if err != nil {
		output.Failed(fmt.Sprintf("%v: %v", errorRequest, err))
		return nil
	}
	if blocked {
		output.Failed(errorBlockedIP)
		return nil
	}

	body, err := json.Marshal(input.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	timeout := time.Duration(input.TimeoutMs) * time.Millisecond
	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(requestCtx, http.MethodPost, input.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	for key, value := range input.Headers {
		request.Header.Set(key, value)
	}
	if input.SecretURL != "" {
		token, sErr := s.bearerToken(ctx, input)
		if sErr != nil {
			return fmt.Errorf("failed to load webhook secret: %w", sErr)
		}
		request.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	response, err := s.client.Do(request)
	if err != nil {
		output.Failed(fmt.Sprintf("%v: %v", errorRequest, err))
		return nil
	}
	defer response.Body.Close()
	preview, _ := io.ReadAll(io.LimitReader(response.Body, maxBodyPreview))

	output.StatusCode = response.StatusCode
	rendered, err := json.Marshal(delivery{
		StatusCode:    response.StatusCode,
		TruncatedBody: string(preview),
		ElapsedMs:     time.Since(started).Milliseconds(),
	})
	if err != nil {
		return err
	}
	if response.StatusCode >= http.StatusBadRequest {
		output.Message = string(rendered)
		output.Failed(fmt.Sprintf("status_%d", response.StatusCode))
		return nil
	}
	output.Done(string(rendered))
	return nil
}

// destinationBlocked reports whether every resolved address for host is
// private, loopback or link local.
func (s *Service) destinationBlocked(ctx context.Context, host string) (bool, error) {
	if ip := net.ParseIP(host); ip != nil {
		return isBlockedIP(ip), nil
	}
	addrs, err := s.lookup(ctx, host)
	if err != nil {
		return false, err
	}
	if len(addrs) == 0 {
		return false, fmt.Errorf("no addresses for %v", host)
	}
	for _, addr := range addrs {
		if isBlockedIP(addr.IP) {
			return true, nil
		}
	}
	return false, nil
}

func isBlockedIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}

func (s *Service) bearerToken(ctx context.Context, input *Input) (string, error) {
	resource := scy.NewResource(nil, input.SecretURL, input.SecretKey)
	aSecret, err := s.secrets.Load(ctx, resource)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(aSecret.String()), nil
}

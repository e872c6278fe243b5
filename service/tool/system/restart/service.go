package restart

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs/url"
	"github.com/viant/gator/model/types"
	"github.com/viant/gator/service/tool"
	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
	rssh "github.com/viant/gosh/runner/ssh"
	"github.com/viant/scy/cred/secret"
	"golang.org/x/crypto/ssh"
)

const name = "restart_service"

// Host identifies where the restart command runs.
type Host struct {
	URL         string `json:"url,omitempty"`
	Credentials string `json:"credentials,omitempty"`
}

type Input struct {
	Service     string `json:"service"`
	Environment string `json:"environment"`
	// Command, when set and command execution is enabled, is run on the
	// target host instead of reporting a simulated restart.
	Command   string `json:"command,omitempty"`
	Host      *Host  `json:"host,omitempty"`
	TimeoutMs int    `json:"timeoutMs,omitempty"`
}

func (i *Input) Init() {
	if i.Service == "" {
		i.Service = "unknown-service"
	}
	if i.Environment == "" {
		i.Environment = "unknown"
	}
	if i.Host == nil {
		i.Host = &Host{}
	}
	if i.Host.URL == "" {
		i.Host.URL = "bash://localhost/"
	}
	if i.TimeoutMs == 0 {
		i.TimeoutMs = int(time.Minute / time.Millisecond)
	}
}

// Output represents the restart outcome.
type Output struct {
	tool.Output
	Status int `json:"status,omitempty"`
}

// Service restarts a managed service, either simulated or by running a real
// command over a local or SSH session.
type Service struct {
	execute  bool
	sessions map[string]*gosh.Service
	mux      sync.Mutex
}

// Option customises the restart service.
type Option func(*Service)

// WithExecution enables real command execution; without it the service only
// reports the restart it would have performed.
func WithExecution(enabled bool) Option {
	return func(s *Service) { s.execute = enabled }
}

// New creates a new restart service
func New(options ...Option) *Service {
	ret := &Service{
		sessions: make(map[string]*gosh.Service),
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
			Description: "Restarts the given service in the given environment.",
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

	if !s.execute || input.Command == "" {
		output.Done(fmt.Sprintf("Restarted %v in %v.", input.Service, input.Environment))
		return nil
	}

	session, err := s.getSession(ctx, input.Host)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	stdout, status, err := session.Run(ctx, input.Command, runner.WithTimeout(input.TimeoutMs))
	output.Status = status
	if err != nil {
		return err
	}
	if status != 0 {
		output.Failed(fmt.Sprintf("restart command exited with %v: %v", status, strings.TrimSpace(stdout)))
		return nil
	}
	output.Done(fmt.Sprintf("Restarted %v in %v.", input.Service, input.Environment))
	return nil
}

// getSession retrieves an existing session or creates a new one
func (s *Service) getSession(ctx context.Context, host *Host) (*gosh.Service, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if session, ok := s.sessions[host.URL]; ok {
		return session, nil
	}

	var service *gosh.Service
	var err error
	if url.Host(host.URL) == "localhost" {
		service, err = gosh.New(ctx, local.New())
	} else {
		config, cErr := s.getSSHConfig(ctx, host)
		if cErr != nil {
			return nil, fmt.Errorf("failed to get SSH config: %w", cErr)
		}
		sshHost := url.Host(host.URL)
		if !strings.Contains(sshHost, ":") {
			sshHost += ":22"
		}
		service, err = gosh.New(ctx, rssh.New(sshHost, config))
	}
	if err != nil {
		return nil, err
	}
	s.sessions[host.URL] = service
	return service, nil
}

// getSSHConfig resolves SSH credentials for the host through the secret
// service.
func (s *Service) getSSHConfig(ctx context.Context, host *Host) (*ssh.ClientConfig, error) {
	credentials := host.Credentials
	if credentials == "" {
		credentials = "localhost"
	}
	secrets := secret.New()
	generic, err := secrets.GetCredentials(ctx, credentials)
	if err != nil {
		return nil, err
	}
	return generic.SSH.Config(ctx)
}

// Close releases all sessions held by this service
func (s *Service) Close() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	var errs []string
	for id, session := range s.sessions {
		if err := session.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("failed to close session %s: %v", id, err))
		}
	}
	s.sessions = make(map[string]*gosh.Service)
	if len(errs) > 0 {
		return fmt.Errorf("errors closing sessions: %s", strings.Join(errs, "; "))
	}
	return nil
}

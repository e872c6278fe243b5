package gator

import (
	"log"
	"time"

	"github.com/viant/gator/extension"
	"github.com/viant/gator/model/types"
	"github.com/viant/gator/policy"
	"github.com/viant/gator/service/coordinator"
	daoaction "github.com/viant/gator/service/dao/action"
	amemory "github.com/viant/gator/service/dao/action/memory"
	"github.com/viant/gator/service/dao/action/sqlite"
	"github.com/viant/gator/service/event"
	"github.com/viant/gator/service/messaging"
	mmemory "github.com/viant/gator/service/messaging/memory"
	"github.com/viant/gator/service/proposer"
	"github.com/viant/gator/service/tool"
	"github.com/viant/gator/service/tool/builtin"
	"github.com/viant/x"
)

// Service assembles the gator runtime from its building blocks.
type Service struct {
	runtime           *Runtime
	config            *Config
	store             daoaction.Store
	policies          *policy.Engine
	proposals         *proposer.Service
	actions           *extension.Actions
	extensionTypes    []*x.Type
	extensionServices []types.Service
	skipBuiltin       bool
	queue             messaging.Queue[event.Event]
	journal           *event.Journal
	logger            *log.Logger
	now               func() time.Time
}

// New creates a service with in-memory defaults; options override any part
// of the assembly.
func New(options ...Option) *Service {
	ret := &Service{runtime: &Runtime{}}
	ret.init(options)
	return ret
}

// NewFromConfig creates a service driven by configuration: the sqlite store
// driver and the event journal URL take effect here. Options still win over
// configuration.
func NewFromConfig(config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ret := &Service{runtime: &Runtime{}, config: config}
	if config.Store.Driver == StoreSQLite {
		store, err := sqlite.Open(config.Store.Location)
		if err != nil {
			return nil, err
		}
		ret.store = store
	}
	if config.Events.JournalURL != "" {
		ret.journal = event.NewJournal(config.Events.JournalURL)
	}
	ret.init(options)
	return ret, nil
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()

	coordinatorOptions := []coordinator.Option{
		coordinator.WithEvents(s.runtime.events),
		coordinator.WithProposer(s.proposals),
	}
	if s.config.Approval.StaleAfter > 0 {
		coordinatorOptions = append(coordinatorOptions, coordinator.WithStaleAfter(s.config.Approval.StaleAfter))
	}
	if s.logger != nil {
		coordinatorOptions = append(coordinatorOptions, coordinator.WithLogger(s.logger))
	}
	if s.now != nil {
		coordinatorOptions = append(coordinatorOptions, coordinator.WithClock(s.now))
	}
	s.runtime.store = s.store
	s.runtime.coordinator = coordinator.New(s.store, s.policies, tool.NewRunner(s.actions), coordinatorOptions...)
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.store == nil {
		s.store = amemory.New()
	}
	if s.policies == nil {
		s.policies = policy.New()
	}
	if s.proposals == nil {
		s.proposals = proposer.New()
	}
	if s.actions == nil {
		s.actions = extension.NewActions(s.extensionTypes...)
	}
	if !s.skipBuiltin {
		builtin.Register(s.actions)
	}
	for _, service := range s.extensionServices {
		s.actions.Register(service)
	}
	if s.queue == nil {
		queueConfig := mmemory.DefaultConfig()
		if s.config.Events.QueueBuffer > 0 {
			queueConfig.QueueBuffer = s.config.Events.QueueBuffer
		}
		s.queue = mmemory.NewQueue[event.Event](queueConfig)
	}
	var publisherOptions []event.Option
	if s.journal != nil {
		publisherOptions = append(publisherOptions, event.WithJournal(s.journal))
	}
	s.runtime.events = event.NewPublisher(s.queue, publisherOptions...)
}

// RegisterExtensionTypes registers go types with the action registry.
func (s *Service) RegisterExtensionTypes(goTypes ...*x.Type) {
	for i := range goTypes {
		s.actions.Types().Register(goTypes[i])
	}
}

// RegisterExtensionServices registers additional tool services.
func (s *Service) RegisterExtensionServices(services ...types.Service) {
	for i := range services {
		s.actions.Register(services[i])
	}
}

// Policies exposes the policy engine, e.g. to install rule overrides.
func (s *Service) Policies() *policy.Engine {
	return s.policies
}

// Runtime returns the assembled runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

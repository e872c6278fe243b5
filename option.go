package gator

import (
	"log"
	"time"

	"github.com/viant/gator/model/types"
	"github.com/viant/gator/policy"
	daoaction "github.com/viant/gator/service/dao/action"
	"github.com/viant/gator/service/event"
	"github.com/viant/gator/service/messaging"
	"github.com/viant/gator/service/proposer"
	"github.com/viant/x"
)

// Option customises a Service.
type Option func(s *Service)

// WithConfig sets the runtime configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithStore sets the action store (memory store by default).
func WithStore(store daoaction.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithPolicy sets the policy engine.
func WithPolicy(engine *policy.Engine) Option {
	return func(s *Service) { s.policies = engine }
}

// WithProposer sets the proposer turning questions into tool proposals.
func WithProposer(proposals *proposer.Service) Option {
	return func(s *Service) { s.proposals = proposals }
}

// WithExtensionTypes registers additional go types with the action registry.
func WithExtensionTypes(goTypes ...*x.Type) Option {
	return func(s *Service) { s.extensionTypes = append(s.extensionTypes, goTypes...) }
}

// WithExtensionServices registers additional tool services on top of the
// built-in ones.
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) { s.extensionServices = append(s.extensionServices, services...) }
}

// WithoutBuiltinTools skips registration of the built-in tool set, leaving
// only extension services in the registry.
func WithoutBuiltinTools() Option {
	return func(s *Service) { s.skipBuiltin = true }
}

// WithEventQueue sets the audit event queue.
func WithEventQueue(queue messaging.Queue[event.Event]) Option {
	return func(s *Service) { s.queue = queue }
}

// WithJournal sets the persistent event journal.
func WithJournal(journal *event.Journal) Option {
	return func(s *Service) { s.journal = journal }
}

// WithLogger sets the structured decision logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

package gator

import (
	"fmt"
	"time"

	"github.com/viant/gator/service/coordinator"
)

// Store drivers accepted by Config.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config is a serialisable representation of the runtime configuration. It
// can be populated from JSON, YAML, environment variables, etc. The zero
// value is useful, all nested fields inherit their package defaults.
type Config struct {
	Store    StoreConfig    `json:"store" yaml:"store"`
	Events   EventsConfig   `json:"events" yaml:"events"`
	Approval ApprovalConfig `json:"approval" yaml:"approval"`
}

// StoreConfig selects the action store backend.
type StoreConfig struct {
	// Driver is either "memory" or "sqlite".
	Driver string `json:"driver" yaml:"driver"`
	// Location is the sqlite database path; ignored by the memory driver.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
}

// EventsConfig controls the audit event stream.
type EventsConfig struct {
	QueueBuffer int `json:"queueBuffer" yaml:"queueBuffer"`
	// JournalURL, when set, persists every event as a JSON object under
	// the supplied afs URL (file:///var/log/gator, mem://events, ...).
	JournalURL string `json:"journalURL,omitempty" yaml:"journalURL,omitempty"`
}

// ApprovalConfig tunes the approval decision table.
type ApprovalConfig struct {
	// StaleAfter is how long a RUNNING action may hold its claim before a
	// forced approval is allowed to reclaim it.
	StaleAfter time.Duration `json:"staleAfter" yaml:"staleAfter"`
}

// DefaultConfig returns a Config populated with the same defaults the
// constructors would otherwise apply. Callers may modify the returned
// struct before passing it to NewFromConfig.
func DefaultConfig() *Config {
	return &Config{
		Store:    StoreConfig{Driver: StoreMemory},
		Events:   EventsConfig{QueueBuffer: 100},
		Approval: ApprovalConfig{StaleAfter: coordinator.RunningStaleAfter},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Store.Driver {
	case "", StoreMemory:
	case StoreSQLite:
		if c.Store.Location == "" {
			return fmt.Errorf("store.location is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported store driver: %q", c.Store.Driver)
	}
	if c.Events.QueueBuffer < 0 {
		return fmt.Errorf("events.queueBuffer must be >= 0")
	}
	if c.Approval.StaleAfter < 0 {
		return fmt.Errorf("approval.staleAfter must be >= 0")
	}
	return nil
}

package graph

import (
	"errors"
	"fmt"
	"sort"
)

// Errors surfaced by the graph package. Handlers distinguish them with
// errors.Is: unknown macro types and bad uploads are the client's fault,
// anything else is a processing failure.
var (
	// ErrUnknownMacroType reports a macro type outside the supported set.
	ErrUnknownMacroType = errors.New("unknown macro type")
	// ErrEmptyData reports an upload with no measurement content.
	ErrEmptyData = errors.New("uploaded file contains no measurement data")
	// ErrMalformedCSV reports content that does not parse as accelerometer CSV.
	ErrMalformedCSV = errors.New("malformed measurement CSV")
	// ErrTooFewSamples reports a capture too short to analyze.
	ErrTooFewSamples = errors.New("not enough samples")
	// ErrBadTimeColumn reports a capture whose timestamps do not increase.
	ErrBadTimeColumn = errors.New("time column is not increasing")
)

// Creator renders a calibration graph for one macro type.
type Creator interface {
	// Name returns the macro type this creator serves.
	Name() string
	// Create renders the measurement into a PNG image.
	Create(m *Measurement) ([]byte, error)
}

// CreatorFactory builds a creator with the given render options.
type CreatorFactory func(opts Options) Creator

// CreatorRegistry maps macro-type names to creator factories. The zero
// value is not usable; use NewCreatorRegistry.
type CreatorRegistry struct {
	factories map[string]CreatorFactory
}

// NewCreatorRegistry creates an empty registry.
func NewCreatorRegistry() *CreatorRegistry {
	return &CreatorRegistry{
		factories: make(map[string]CreatorFactory),
	}
}

// Register adds a creator factory under a macro-type name.
func (r *CreatorRegistry) Register(name string, factory CreatorFactory) error {
	if name == "" {
		return errors.New("macro type name cannot be empty")
	}
	if factory == nil {
		return errors.New("creator factory cannot be nil")
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("macro type %s is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Create instantiates the creator registered for the macro type.
func (r *CreatorRegistry) Create(name string, opts Options) (Creator, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMacroType, name)
	}
	return factory(opts), nil
}

// IsRegistered checks whether a macro type is known.
func (r *CreatorRegistry) IsRegistered(name string) bool {
	_, exists := r.factories[name]
	return exists
}

// Names returns the registered macro-type names, sorted.
func (r *CreatorRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the creators for the five supported macro types,
// registered by each creator's init function.
var DefaultRegistry = NewCreatorRegistry()

func mustRegister(name string, factory CreatorFactory) {
	if err := DefaultRegistry.Register(name, factory); err != nil {
		panic(fmt.Sprintf("failed to register macro type %s: %v", name, err))
	}
}

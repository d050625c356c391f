package service

import (
	"sort"

	"go.uber.org/zap"

	"github.com/septivank/solar-telemetry-ingest/internal/domain"
	"github.com/septivank/solar-telemetry-ingest/internal/pipeline"
	"github.com/septivank/solar-telemetry-ingest/internal/repository"
)

// Domain bundles everything served for one ingestion domain
type Domain struct {
	Rules     domain.Rules
	Pipeline  *pipeline.Pipeline
	Submitter *Submitter
	Readings  *ReadingService
}

// Registry looks domains up by name
type Registry struct {
	domains map[domain.Name]*Domain
}

// NewRegistry wires a Domain for every known rule table on top of conn.
// publisher may be nil.
func NewRegistry(conn repository.DB, publisher EventPublisher, scanRows int, logger *zap.Logger) *Registry {
	stores := make(map[domain.Name]ReadingStore)
	for _, rules := range domain.All() {
		stores[rules.Name] = repository.NewRepository(conn, rules.Name)
	}
	return NewRegistryWithStores(stores, publisher, scanRows, logger)
}

// NewRegistryWithStores wires domains on explicit stores, one per rule table
func NewRegistryWithStores(stores map[domain.Name]ReadingStore, publisher EventPublisher, scanRows int, logger *zap.Logger) *Registry {
	reg := &Registry{domains: make(map[domain.Name]*Domain)}
	for _, rules := range domain.All() {
		store, ok := stores[rules.Name]
		if !ok {
			continue
		}
		reg.Add(&Domain{
			Rules:     rules,
			Pipeline:  pipeline.New(rules, scanRows, logger),
			Submitter: NewSubmitter(rules, store, publisher, logger),
			Readings:  NewReadingService(rules, store, logger),
		})
	}
	return reg
}

// Add registers d under its rule table name
func (r *Registry) Add(d *Domain) {
	r.domains[d.Rules.Name] = d
}

// Lookup returns the domain named name
func (r *Registry) Lookup(name string) (*Domain, bool) {
	rules, ok := domain.Lookup(name)
	if !ok {
		return nil, false
	}
	d, ok := r.domains[rules.Name]
	return d, ok
}

// Names returns the registered domain names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.domains))
	for name := range r.domains {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

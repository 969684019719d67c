// Package provider is the registration point exposing the processing
// algorithms to the command surface. Purely declarative: it holds the list
// and performs no validation of its own.
package provider

// Algorithm is one selectable operation. Run parses its own arguments.
type Algorithm interface {
	// Name is the unique machine name used for dispatch.
	Name() string
	// DisplayName is the human-readable name.
	DisplayName() string
	// Group names the algorithm group the operation belongs to.
	Group() string
	// ShortHelp is a one-paragraph description.
	ShortHelp() string
	// Run executes the operation with its command-line arguments.
	Run(args []string) error
}

// Provider registers algorithms under a common id and name.
type Provider struct {
	id         string
	name       string
	longName   string
	algorithms []Algorithm
}

// New creates an empty provider.
func New(id, name, longName string) *Provider {
	return &Provider{id: id, name: name, longName: longName}
}

// ID returns the unique provider id.
func (p *Provider) ID() string { return p.id }

// Name returns the provider name shown to users.
func (p *Provider) Name() string { return p.name }

// LongName returns the detailed provider name.
func (p *Provider) LongName() string { return p.longName }

// Add registers an algorithm.
func (p *Provider) Add(a Algorithm) {
	p.algorithms = append(p.algorithms, a)
}

// Algorithms returns the registered algorithms in registration order.
func (p *Provider) Algorithms() []Algorithm {
	return p.algorithms
}

// Lookup finds an algorithm by machine name.
func (p *Provider) Lookup(name string) (Algorithm, bool) {
	for _, a := range p.algorithms {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry is a thread-safe registry of data providers.
// It maps provider names to Provider instances and maintains an index
// of which providers serve which capabilities, in priority order.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider     // name → provider
	capIdx    map[Capability][]string // capability → provider names (priority order)
	defaults  map[Capability]string   // capability → default provider name
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		capIdx:    make(map[Capability][]string),
		defaults:  make(map[Capability]string),
	}
}

// Register adds a provider to the registry. If the provider requires
// credentials, they should be set via Init() before calling Register.
// Duplicate registrations overwrite the previous entry. Registration order
// is the default priority order per capability.
func (r *Registry) Register(p Provider) error {
	info := p.Info()
	if info.Name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[info.Name] = p

	// Index the provider's capabilities.
	for _, cap := range p.Capabilities() {
		existing := r.capIdx[cap]
		// Avoid duplicates.
		found := false
		for _, name := range existing {
			if name == info.Name {
				found = true
				break
			}
		}
		if !found {
			r.capIdx[cap] = append(existing, info.Name)
		}
		// Set as default if no default exists for this capability.
		if _, ok := r.defaults[cap]; !ok {
			r.defaults[cap] = info.Name
		}
	}

	return nil
}

// Unregister removes a provider from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.providers, name)

	// Clean up capability index.
	for cap, names := range r.capIdx {
		filtered := names[:0]
		for _, n := range names {
			if n != name {
				filtered = append(filtered, n)
			}
		}
		if len(filtered) == 0 {
			delete(r.capIdx, cap)
			delete(r.defaults, cap)
		} else {
			r.capIdx[cap] = filtered
			if r.defaults[cap] == name {
				r.defaults[cap] = filtered[0]
			}
		}
	}
}

// Get returns a provider by name, or an error if not found.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return p, nil
}

// List returns info about all registered providers, sorted by name.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for _, p := range r.providers {
		infos = append(infos, p.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// ProvidersFor returns the names of providers that serve the given capability,
// in priority order (first = default).
func (r *Registry) ProvidersFor(cap Capability) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.capIdx[cap]
	result := make([]string, len(names))
	copy(result, names)
	return result
}

// DefaultProvider returns the default provider name for a capability.
func (r *Registry) DefaultProvider(cap Capability) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.defaults[cap]
	return name, ok
}

// SetDefault sets the default provider for a capability.
func (r *Registry) SetDefault(cap Capability, providerName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Verify the provider exists and serves this capability.
	p, ok := r.providers[providerName]
	if !ok {
		return &ErrProviderNotFound{Name: providerName}
	}

	fetcher := p.Fetcher(cap)
	if fetcher == nil {
		return &ErrCapabilityNotSupported{Provider: providerName, Capability: cap}
	}

	r.defaults[cap] = providerName
	return nil
}

// SetPriority reorders the fallback chain for a capability. Names must all be
// registered and serve the capability; providers omitted from names keep
// their positions after the listed ones. The first name becomes the default.
func (r *Registry) SetPriority(cap Capability, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		p, ok := r.providers[name]
		if !ok {
			return &ErrProviderNotFound{Name: name}
		}
		if p.Fetcher(cap) == nil {
			return &ErrCapabilityNotSupported{Provider: name, Capability: cap}
		}
	}

	listed := make(map[string]bool, len(names))
	ordered := make([]string, 0, len(r.capIdx[cap]))
	for _, name := range names {
		if !listed[name] {
			listed[name] = true
			ordered = append(ordered, name)
		}
	}
	for _, name := range r.capIdx[cap] {
		if !listed[name] {
			ordered = append(ordered, name)
		}
	}

	r.capIdx[cap] = ordered
	if len(ordered) > 0 {
		r.defaults[cap] = ordered[0]
	}
	return nil
}

// Fetch retrieves data for the given capability using the specified provider
// (or the default if providerName is empty). Errors come back classified as
// *Failure so callers can branch on the reason.
func (r *Registry) Fetch(ctx context.Context, cap Capability, params QueryParams) (*FetchResult, error) {
	providerName := params[ParamProvider]

	r.mu.RLock()
	if providerName == "" {
		providerName = r.defaults[cap]
	}
	p, ok := r.providers[providerName]
	r.mu.RUnlock()

	if !ok || providerName == "" {
		return nil, &ErrProviderNotFound{Name: providerName}
	}

	fetcher := p.Fetcher(cap)
	if fetcher == nil {
		return nil, &ErrCapabilityNotSupported{Provider: providerName, Capability: cap}
	}

	// Validate required params.
	if err := ValidateParams(params, fetcher.RequiredParams()); err != nil {
		return nil, err
	}

	result, err := fetcher.Fetch(ctx, params)
	if err != nil {
		return nil, NewFailure(providerName, cap, err)
	}

	result.Provider = providerName
	result.Capability = cap
	if result.FetchedAt.IsZero() {
		result.FetchedAt = time.Now()
	}

	return result, nil
}

// CapabilityCoverage returns a map of capabilities to the providers that serve them.
func (r *Registry) CapabilityCoverage() map[Capability][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coverage := make(map[Capability][]string, len(r.capIdx))
	for cap, names := range r.capIdx {
		cp := make([]string, len(names))
		copy(cp, names)
		coverage[cap] = cp
	}
	return coverage
}

// global is the default global registry.
var global = NewRegistry()

// Global returns the default global provider registry.
func Global() *Registry {
	return global
}

// RegisterProvider adds a provider to the global registry.
func RegisterProvider(p Provider) error {
	return global.Register(p)
}

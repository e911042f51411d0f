package asset

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry is a thread-safe registry of known assets and exchanges.
type Registry struct {
	assets    map[string]*Asset
	exchanges map[string]Exchange
	mu        sync.RWMutex
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		assets:    make(map[string]*Asset),
		exchanges: make(map[string]Exchange),
	}
}

// Register adds an asset to the registry.
// Panics if an asset with the same symbol is already registered.
func (r *Registry) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.assets[a.Symbol()]; exists {
		panic(fmt.Sprintf("asset: %s already registered", a.Symbol()))
	}
	r.assets[a.Symbol()] = a
}

// RegisterExchange adds or replaces an exchange.
func (r *Registry) RegisterExchange(e Exchange) {
	if e.ID == "" {
		panic("asset: exchange without id")
	}
	if e.DisplayName == "" {
		e.DisplayName = TitleCase(e.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.exchanges[e.ID] = e
}

// Get retrieves an asset by symbol, case-insensitively.
func (r *Registry) Get(symbol string) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.assets[strings.ToUpper(symbol)]
	return a, ok
}

// MustGet retrieves an asset by symbol, panics if not found.
func (r *Registry) MustGet(symbol string) *Asset {
	a, ok := r.Get(symbol)
	if !ok {
		panic(fmt.Sprintf("asset: %s not found in registry", symbol))
	}
	return a
}

// Has returns true if the symbol is registered.
func (r *Registry) Has(symbol string) bool {
	_, ok := r.Get(symbol)
	return ok
}

// Cryptos returns the registered crypto assets sorted by symbol.
func (r *Registry) Cryptos() []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Asset, 0, len(r.assets))
	for _, a := range r.assets {
		if !a.IsFiat() {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Symbol() < result[j].Symbol() })
	return result
}

// Exchange returns a registered exchange.
func (r *Registry) Exchange(id string) (Exchange, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exchanges[id]
	return e, ok
}

// ExchangeName returns the display name of id, or id in title case when
// the exchange is unknown.
func (r *Registry) ExchangeName(id string) string {
	if e, ok := r.Exchange(id); ok {
		return e.DisplayName
	}
	return TitleCase(id)
}

// Exchanges returns all exchanges sorted by id.
func (r *Registry) Exchanges() []Exchange {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Exchange, 0, len(r.exchanges))
	for _, e := range r.exchanges {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Count returns the number of registered assets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.assets)
}

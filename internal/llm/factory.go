package llm

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"docextract/internal/config"
	"docextract/internal/port"
)

// ProviderFactory creates a ChatClient from a provider config.
type ProviderFactory func(cfg *config.LLMProviderConfig) (port.ChatClient, error)

var (
	mu        sync.RWMutex
	providers = map[string]ProviderFactory{}
)

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	mu.Lock()
	defer mu.Unlock()
	providers[name] = factory
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewClient creates a ChatClient from a provider config using the registered factory.
func NewClient(cfg *config.LLMProviderConfig) (port.ChatClient, error) {
	mu.RLock()
	factory, ok := providers[cfg.Provider]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown llm provider: %s (registered: %s)",
			cfg.Provider, strings.Join(Providers(), ", "))
	}
	return factory(cfg)
}

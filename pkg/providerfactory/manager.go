package providerfactory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"nimbus-hq/callisto/pkg/providers"
)

// Manager holds a named collection of adapter instances for components that
// work across providers, such as the background health prober. The facade
// does not use it; per-call adapters come straight from New.
//
// Manager is safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	adapters map[string]providers.Adapter
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		adapters: make(map[string]providers.Adapter),
	}
}

// Add constructs an adapter for the named provider and registers it under
// that name, replacing any previous instance.
func (m *Manager) Add(name string, opts providers.AdapterOptions) error {
	adapter, err := New(name, opts)
	if err != nil {
		return fmt.Errorf("failed to add provider %q: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.adapters[name]; ok {
		slog.Warn("replacing existing adapter", "provider", name)
	}
	m.adapters[name] = adapter

	slog.Info("adapter added",
		"provider", name,
		"total", len(m.adapters),
	)
	return nil
}

// Get returns the adapter registered under name.
func (m *Manager) Get(name string) (providers.Adapter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	adapter, ok := m.adapters[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not found", name)
	}
	return adapter, nil
}

// Names returns the registered adapter names.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.adapters))
	for name := range m.adapters {
		names = append(names, name)
	}
	return names
}

// Adapters returns a copy of the adapter map, safe for the caller to range
// over while the manager mutates.
func (m *Manager) Adapters() map[string]providers.Adapter {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]providers.Adapter, len(m.adapters))
	for name, adapter := range m.adapters {
		out[name] = adapter
	}
	return out
}

// Remove drops the adapter registered under name.
func (m *Manager) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.adapters[name]; !ok {
		return fmt.Errorf("provider %q not found", name)
	}
	delete(m.adapters, name)

	slog.Info("adapter removed",
		"provider", name,
		"remaining", len(m.adapters),
	)
	return nil
}

// Count returns the number of registered adapters.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.adapters)
}

// InstrumentAll installs obs as the call observer on every registered
// adapter that supports request-path observation. Call it after the last
// Add and before the adapters serve traffic.
func (m *Manager) InstrumentAll(obs providers.CallObserver) {
	for name, adapter := range m.Adapters() {
		observable, ok := adapter.(interface {
			SetCallObserver(providers.CallObserver)
		})
		if !ok {
			slog.Debug("adapter does not support call observation", "provider", name)
			continue
		}
		observable.SetCallObserver(obs)
	}
}

// HealthSummary probes every registered adapter once and collects the
// per-provider reports. No composite status is synthesized; aggregation is
// the caller's concern.
func (m *Manager) HealthSummary(ctx context.Context) map[string]providers.HealthReport {
	reports := make(map[string]providers.HealthReport)
	for name, adapter := range m.Adapters() {
		reports[name] = adapter.HealthCheck(ctx)
	}
	return reports
}

package sessionstore

import (
	"maps"
	"sync"
)

// Memory is a Store that lives only as long as the process.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	writes int
}

// NewMemory returns a Memory store seeded with initial (may be nil).
func NewMemory(initial map[string]string) *Memory {
	values := make(map[string]string, len(initial))
	maps.Copy(values, initial)
	return &Memory{values: values}
}

func (m *Memory) Load() (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.values), nil
}

func (m *Memory) Save(key, value string) error {
	return m.SaveAll(map[string]string{key: value})
}

func (m *Memory) SaveAll(values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	maps.Copy(m.values, values)
	m.writes++
	return nil
}

func (m *Memory) Clear(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	m.writes++
	return nil
}

// Writes counts mutating calls, for tests asserting nothing was persisted.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

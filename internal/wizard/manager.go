package wizard

import (
	"strings"
	"sync"
)

// CompleteFactory builds the completion hook for a project's wizard.
type CompleteFactory func(projectID string, kind Kind) CompleteFunc

// Manager keeps one wizard per project and kind for the life of the process.
// Nothing is persisted, so a restart abandons any in-progress wizard.
type Manager struct {
	mu      sync.Mutex
	wizards map[string]*Wizard
	factory CompleteFactory
	opts    []Option
}

// NewManager creates a Manager. opts apply to every wizard it creates.
func NewManager(factory CompleteFactory, opts ...Option) *Manager {
	return &Manager{wizards: make(map[string]*Wizard), factory: factory, opts: opts}
}

// Get returns the wizard for projectID and kind, creating it at step 1 if needed.
func (m *Manager) Get(projectID string, kind Kind) (*Wizard, error) {
	def, err := Lookup(kind)
	if err != nil {
		return nil, err
	}

	key := projectID + "/" + string(kind)
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.wizards[key]; ok {
		return w, nil
	}
	var hook CompleteFunc
	if m.factory != nil {
		hook = m.factory(projectID, kind)
	}
	w := New(def, hook, m.opts...)
	m.wizards[key] = w
	return w, nil
}

// Forget drops every wizard belonging to projectID.
func (m *Manager) Forget(projectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.wizards {
		if strings.HasPrefix(key, projectID+"/") {
			delete(m.wizards, key)
		}
	}
}

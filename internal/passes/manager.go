package passes

import (
	"fmt"

	"netir/internal/netlist"
)

// Pass inspects or transforms a netlist before emission.
type Pass interface {
	Name() string
	Run(nl *netlist.Netlist) error
}

// Manager runs passes in registration order and stops at the first failure.
type Manager struct {
	passes []Pass
}

// NewManager returns an empty pass manager.
func NewManager() *Manager {
	return &Manager{}
}

// Add appends p to the pipeline.
func (m *Manager) Add(p Pass) {
	m.passes = append(m.passes, p)
}

// Run executes every registered pass over nl.
func (m *Manager) Run(nl *netlist.Netlist) error {
	if nl == nil {
		return fmt.Errorf("passes: netlist is nil")
	}
	for _, p := range m.passes {
		if err := p.Run(nl); err != nil {
			return fmt.Errorf("%s: %w", p.Name(), err)
		}
	}
	return nil
}

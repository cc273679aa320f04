package textir

import (
	"fmt"
	"strings"

	"netir/internal/netlist"
)

// bind records that the nets of value are produced by ops.
func (e *emitter) bind(value netlist.Value, ops []operand) {
	if len(value) != len(ops) {
		e.fail(fmt.Errorf("%w: binding %d nets to %d operands", ErrInconsistent, len(value), len(ops)))
		return
	}
	for i, net := range value {
		e.nets[net] = ops[i]
	}
}

func (e *emitter) resolveNet(net netlist.Net) operand {
	if net.IsConst() {
		return literal(net.Bit)
	}
	op, ok := e.nets[net]
	if !ok {
		e.fail(fmt.Errorf("%w: net %s has no driver", ErrInconsistent, net))
		return literal(0)
	}
	return op
}

func (e *emitter) resolve(value netlist.Value) []operand {
	ops := make([]operand, len(value))
	for i, net := range value {
		ops[i] = e.resolveNet(net)
	}
	return ops
}

// value renders value in canonical form.
func (e *emitter) value(value netlist.Value) string {
	return e.slots.render(e.resolve(value))
}

func (e *emitter) net(net netlist.Net) string {
	return e.slots.render([]operand{e.resolveNet(net)})
}

// slot renders the full output of slot id.
func (e *emitter) slot(id int) string {
	return e.slots.render(e.slots.output(id))
}

// ioValue renders an IO value keyed by port name, with the same priorities
// as slot values.
func (e *emitter) ioValue(value netlist.IOValue) string {
	if len(value) == 0 {
		return "[]"
	}
	for _, net := range value {
		if net.Port < 0 || net.Port >= len(e.nl.IOPorts) {
			e.fail(fmt.Errorf("%w: io net refers to port %d of %d", ErrInconsistent, net.Port, len(e.nl.IOPorts)))
			return "[]"
		}
	}
	first := value[0].Port
	port := e.nl.IOPorts[first]
	whole := port.Width == len(value)
	for bit, net := range value {
		if net.Port != first || net.Bit != bit {
			whole = false
			break
		}
	}
	switch {
	case whole && len(value) == 1:
		return "&" + Escape(port.Name)
	case whole:
		return fmt.Sprintf("&%s:%d", Escape(port.Name), len(value))
	case len(value) == 1:
		return fmt.Sprintf("&%s+%d", Escape(port.Name), value[0].Bit)
	}
	parts := make([]string, 0, len(value))
	for i := len(value) - 1; i >= 0; i-- {
		net := value[i]
		parts = append(parts, fmt.Sprintf("&%s+%d", Escape(e.nl.IOPorts[net.Port].Name), net.Bit))
	}
	return "[ " + strings.Join(parts, " ") + " ]"
}

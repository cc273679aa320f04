package textir

import (
	"fmt"
	"strconv"
	"strings"
)

// operand is a resolved net: a literal bit (slot < 0) or bit of slot.
type operand struct {
	slot int
	bit  int
}

func literal(bit int) operand {
	return operand{slot: -1, bit: bit}
}

func (o operand) isLiteral() bool {
	return o.slot < 0
}

func zeros(width int) []operand {
	return repeat(literal(0), width)
}

func ones(width int) []operand {
	return repeat(literal(1), width)
}

func repeat(o operand, width int) []operand {
	ops := make([]operand, width)
	for i := range ops {
		ops[i] = o
	}
	return ops
}

// slotAllocator hands out slot ids from a single monotonic counter.
type slotAllocator struct {
	next int
	// widths is indexed by slot id; ids covered by a wider slot hold -1.
	widths []int
}

// reserve allocates a slot of the given width. A zero-width slot still
// consumes one id.
func (a *slotAllocator) reserve(width int) int {
	id := a.next
	a.next += max(width, 1)
	for len(a.widths) < a.next {
		a.widths = append(a.widths, -1)
	}
	a.widths[id] = width
	return id
}

func (a *slotAllocator) width(id int) int {
	if id < 0 || id >= len(a.widths) || a.widths[id] < 0 {
		panic(fmt.Sprintf("textir: slot %d was never reserved", id))
	}
	return a.widths[id]
}

// output returns every bit of slot id, least significant first.
func (a *slotAllocator) output(id int) []operand {
	ops := make([]operand, a.width(id))
	for i := range ops {
		ops[i] = operand{slot: id, bit: i}
	}
	return ops
}

// isFullOutput reports whether ops is exactly the output of ops[0]'s slot.
func (a *slotAllocator) isFullOutput(ops []operand) bool {
	if len(ops) == 0 || ops[0].isLiteral() {
		return false
	}
	slot := ops[0].slot
	if a.width(slot) != len(ops) {
		return false
	}
	for i, o := range ops {
		if o.slot != slot || o.bit != i {
			return false
		}
	}
	return true
}

// render prints ops in the shortest canonical form.
func (a *slotAllocator) render(ops []operand) string {
	if len(ops) == 0 {
		return "[]"
	}
	allLiteral := true
	for _, o := range ops {
		if !o.isLiteral() {
			allLiteral = false
			break
		}
	}
	switch {
	case allLiteral:
		var b strings.Builder
		for i := len(ops) - 1; i >= 0; i-- {
			b.WriteString(strconv.Itoa(ops[i].bit))
		}
		return b.String()
	case a.isFullOutput(ops):
		if len(ops) == 1 {
			return fmt.Sprintf("%%%d", ops[0].slot)
		}
		return fmt.Sprintf("%%%d:%d", ops[0].slot, len(ops))
	case len(ops) == 1:
		return fmt.Sprintf("%%%d+%d", ops[0].slot, ops[0].bit)
	}
	parts := make([]string, 0, len(ops))
	for i := len(ops) - 1; i >= 0; i-- {
		o := ops[i]
		if o.isLiteral() {
			parts = append(parts, strconv.Itoa(o.bit))
		} else {
			parts = append(parts, fmt.Sprintf("%%%d+%d", o.slot, o.bit))
		}
	}
	return "[ " + strings.Join(parts, " ") + " ]"
}

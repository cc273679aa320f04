package textir

import (
	"fmt"

	"netir/internal/netlist"
)

type opKey struct {
	op    netlist.Op
	arity int
}

// loweringRule decomposes one operator into primitive instructions. slots
// returns the widths of the slots to reserve, in emission order; the
// operator's result is the low Width bits of the last slot.
type loweringRule struct {
	slots func(c *netlist.Operator) []int
	emit  func(e *emitter, c *netlist.Operator, slots []int, meta int)
}

var loweringTable = buildLoweringTable()

func buildLoweringTable() map[opKey]loweringRule {
	t := map[opKey]loweringRule{
		{netlist.OpNot, 1}: {
			slots: resultWidth,
			emit: func(e *emitter, c *netlist.Operator, s []int, meta int) {
				e.inst(s[0], meta, "not", e.value(c.Inputs[0]))
			},
		},
		{netlist.OpSub, 1}: {
			slots: notThenCarry,
			emit: func(e *emitter, c *netlist.Operator, s []int, meta int) {
				e.inst(s[0], meta, "not", e.value(c.Inputs[0]))
				e.inst(s[1], meta, "adc", e.slot(s[0]), e.slots.render(zeros(c.Width)), "1")
			},
		},
		{netlist.OpSub, 2}: {
			slots: notThenCarry,
			emit: func(e *emitter, c *netlist.Operator, s []int, meta int) {
				e.inst(s[0], meta, "not", e.value(c.Inputs[1]))
				e.inst(s[1], meta, "adc", e.value(c.Inputs[0]), e.slot(s[0]), "1")
			},
		},
		{netlist.OpReduceAnd, 1}: {
			slots: oneBit,
			emit: func(e *emitter, c *netlist.Operator, s []int, meta int) {
				e.inst(s[0], meta, "eq", e.value(c.Inputs[0]), e.slots.render(ones(len(c.Inputs[0]))))
			},
		},
		{netlist.OpReduceXor, 1}: {
			slots: func(c *netlist.Operator) []int {
				return repeatWidth(1, len(c.Inputs[0]))
			},
			emit: func(e *emitter, c *netlist.Operator, s []int, meta int) {
				prev := e.slots.render(zeros(1))
				for i, id := range s {
					e.inst(id, meta, "xor", prev, e.net(c.Inputs[0][i]))
					prev = e.slot(id)
				}
			},
		},
		{netlist.OpAdd, 2}: {
			slots: func(c *netlist.Operator) []int {
				return []int{c.Width + 1}
			},
			emit: func(e *emitter, c *netlist.Operator, s []int, meta int) {
				e.inst(s[0], meta, "adc", e.value(c.Inputs[0]), e.value(c.Inputs[1]), "0")
			},
		},
		{netlist.OpMux, 3}: {
			slots: resultWidth,
			emit: func(e *emitter, c *netlist.Operator, s []int, meta int) {
				e.inst(s[0], meta, "mux", e.value(c.Inputs[0]), e.value(c.Inputs[1]), e.value(c.Inputs[2]))
			},
		},
	}

	for _, op := range []netlist.Op{netlist.OpBool, netlist.OpReduceOr} {
		t[opKey{op, 1}] = loweringRule{
			slots: func(*netlist.Operator) []int { return []int{1, 1} },
			emit: func(e *emitter, c *netlist.Operator, s []int, meta int) {
				e.inst(s[0], meta, "eq", e.value(c.Inputs[0]), e.slots.render(zeros(len(c.Inputs[0]))))
				e.inst(s[1], meta, "not", e.slot(s[0]))
			},
		}
	}

	for op, opcode := range map[netlist.Op]string{
		netlist.OpMul: "mul",
		netlist.OpAnd: "and",
		netlist.OpOr:  "or",
		netlist.OpXor: "xor",
		netlist.OpEq:  "eq",
		netlist.OpULt: "ult",
		netlist.OpSLt: "slt",
	} {
		t[opKey{op, 2}] = binaryRule(opcode, false)
	}
	// a > b is lowered as b < a.
	t[opKey{netlist.OpUGt, 2}] = binaryRule("ult", true)
	t[opKey{netlist.OpSGt, 2}] = binaryRule("slt", true)

	for op, opcode := range map[netlist.Op]string{
		netlist.OpShl:  "shl",
		netlist.OpUShr: "ushr",
		netlist.OpSShr: "sshr",
	} {
		t[opKey{op, 2}] = shiftRule(opcode)
	}

	for op, opcode := range map[netlist.Op]string{
		netlist.OpUDiv: "udiv",
		netlist.OpSDiv: "sdivfloor",
		netlist.OpUMod: "umod",
		netlist.OpSMod: "smodfloor",
	} {
		t[opKey{op, 2}] = divisionRule(opcode)
	}

	// Each of these is the negation of a primitive comparison: a != b is
	// !(a == b), a <= b is !(b < a) and a >= b is !(a < b).
	t[opKey{netlist.OpNe, 2}] = negatedRule("eq", false)
	t[opKey{netlist.OpULe, 2}] = negatedRule("ult", true)
	t[opKey{netlist.OpUGe, 2}] = negatedRule("ult", false)
	t[opKey{netlist.OpSLe, 2}] = negatedRule("slt", true)
	t[opKey{netlist.OpSGe, 2}] = negatedRule("slt", false)
	return t
}

func resultWidth(c *netlist.Operator) []int {
	return []int{c.Width}
}

func oneBit(*netlist.Operator) []int {
	return []int{1}
}

// notThenCarry reserves a NOT result and a carry-chain result one bit wider.
func notThenCarry(c *netlist.Operator) []int {
	return []int{c.Width, c.Width + 1}
}

func repeatWidth(width, n int) []int {
	widths := make([]int, n)
	for i := range widths {
		widths[i] = width
	}
	return widths
}

func operands(e *emitter, c *netlist.Operator, swap bool) (string, string) {
	a, b := e.value(c.Inputs[0]), e.value(c.Inputs[1])
	if swap {
		return b, a
	}
	return a, b
}

func binaryRule(opcode string, swap bool) loweringRule {
	return loweringRule{
		slots: resultWidth,
		emit: func(e *emitter, c *netlist.Operator, s []int, meta int) {
			a, b := operands(e, c, swap)
			e.inst(s[0], meta, opcode, a, b)
		},
	}
}

func shiftRule(opcode string) loweringRule {
	return loweringRule{
		slots: resultWidth,
		emit: func(e *emitter, c *netlist.Operator, s []int, meta int) {
			e.inst(s[0], meta, opcode, e.value(c.Inputs[0]), e.value(c.Inputs[1]), "#1")
		},
	}
}

// divisionRule guards the divider so that division by zero yields zero.
func divisionRule(opcode string) loweringRule {
	return loweringRule{
		slots: func(c *netlist.Operator) []int {
			return []int{1, c.Width, c.Width}
		},
		emit: func(e *emitter, c *netlist.Operator, s []int, meta int) {
			zero := e.slots.render(zeros(c.Width))
			e.inst(s[0], meta, "eq", zero, e.value(c.Inputs[1]))
			e.inst(s[1], meta, opcode, e.value(c.Inputs[0]), e.value(c.Inputs[1]))
			e.inst(s[2], meta, "mux", e.slot(s[0]), zero, e.slot(s[1]))
		},
	}
}

func negatedRule(opcode string, swap bool) loweringRule {
	return loweringRule{
		slots: func(*netlist.Operator) []int { return []int{1, 1} },
		emit: func(e *emitter, c *netlist.Operator, s []int, meta int) {
			a, b := operands(e, c, swap)
			e.inst(s[0], meta, opcode, a, b)
			e.inst(s[1], meta, "not", e.slot(s[0]))
		},
	}
}

func lookupRule(c *netlist.Operator) (loweringRule, error) {
	rule, ok := loweringTable[opKey{c.Op, len(c.Inputs)}]
	if !ok {
		return loweringRule{}, fmt.Errorf("%w: operator %s with %d inputs", ErrUnsupportedCell, c.Op, len(c.Inputs))
	}
	return rule, nil
}

func (e *emitter) reserveOperator(index int, c *netlist.Operator) {
	if !e.validWidth("operator result", c.Width) {
		return
	}
	rule, err := lookupRule(c)
	if err != nil {
		e.fail(err)
		return
	}
	slots := make([]int, 0, 3)
	for _, width := range rule.slots(c) {
		slots = append(slots, e.slots.reserve(width))
	}
	e.cellSlots[index] = slots
	value := netlist.CellValue(index, 0, c.Width)
	if len(slots) == 0 {
		e.bind(value, zeros(c.Width))
		return
	}
	out := e.slots.output(slots[len(slots)-1])
	if len(out) < c.Width {
		e.fail(fmt.Errorf("%w: operator %s result is %d bits, slot has %d", ErrInconsistent, c.Op, c.Width, len(out)))
		return
	}
	e.bind(value, out[:c.Width])
}

func (e *emitter) emitOperator(index int, c *netlist.Operator) {
	rule, err := lookupRule(c)
	if err != nil {
		e.fail(err)
		return
	}
	meta := e.cellMeta(c, nil)
	rule.emit(e, c, e.cellSlots[index], meta)
}

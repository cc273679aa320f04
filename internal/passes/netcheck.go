package passes

import (
	"fmt"
	"slices"

	"netir/internal/diag"
	"netir/internal/netlist"
)

// NetlistCheck verifies that a netlist is well formed enough to be lowered:
// references point at existing cells, ports and modules, and operator
// arities and operand widths agree.
type NetlistCheck struct {
	reporter *diag.Reporter
	nl       *netlist.Netlist
	failed   bool
}

// NewNetlistCheck constructs the pass. reporter is optional but recommended
// so the pass can surface precise diagnostics.
func NewNetlistCheck(reporter *diag.Reporter) *NetlistCheck {
	return &NetlistCheck{reporter: reporter}
}

// Name implements the Pass interface.
func (c *NetlistCheck) Name() string {
	return "netlist-check"
}

// Run executes the pass over the entire netlist.
func (c *NetlistCheck) Run(nl *netlist.Netlist) error {
	if nl == nil {
		return fmt.Errorf("netlist check requires a non-nil netlist")
	}
	c.nl = nl
	c.failed = false

	if nl.Top() == nil {
		c.report(nil, "cell 0 must be the top cell")
		return fmt.Errorf("netlist check reported errors")
	}
	for _, port := range nl.IOPorts {
		c.checkWidth(nil, fmt.Sprintf("io port %q", port.Name), "port", port.Width)
	}
	c.checkModules()
	for index, cell := range nl.Cells {
		c.checkCell(index, cell)
	}
	for _, value := range nl.Signals {
		c.checkValue(nil, "signal", value)
	}
	if c.failed {
		return fmt.Errorf("netlist check reported errors")
	}
	return nil
}

func (c *NetlistCheck) checkModules() {
	for idx, module := range c.nl.Modules {
		if module.Parent < -1 || module.Parent >= len(c.nl.Modules) || module.Parent == idx {
			c.report(nil, fmt.Sprintf("module %d has invalid parent %d", idx, module.Parent))
		}
		for _, sn := range module.SignalNames {
			if sn.Signal < 0 || sn.Signal >= len(c.nl.Signals) {
				c.report(nil, fmt.Sprintf("module %d names unknown signal %d", idx, sn.Signal))
			}
		}
	}
}

func (c *NetlistCheck) checkCell(index int, cell netlist.Cell) {
	common := cell.Common()
	if len(c.nl.Modules) > 0 && (common.ModuleIdx < 0 || common.ModuleIdx >= len(c.nl.Modules)) {
		c.report(cell, fmt.Sprintf("cell %d belongs to unknown module %d", index, common.ModuleIdx))
	}
	label := fmt.Sprintf("cell %d", index)

	switch x := cell.(type) {
	case *netlist.Top:
		if index != 0 {
			c.report(cell, fmt.Sprintf("%s: only cell 0 may be a top cell", label))
		}
		for _, port := range x.PortsI {
			c.checkRange(cell, label, "input "+port.Name, port.Start, port.Width)
		}
		for _, port := range x.PortsO {
			c.checkValue(cell, label, port.Value)
		}
	case *netlist.Operator:
		c.checkWidth(cell, label, "result", x.Width)
		c.checkOperator(label, x)
	case *netlist.Part:
		c.checkWidth(cell, label, "result", x.Width)
		c.checkValue(cell, label, x.Value)
		c.checkValue(cell, label, x.Offset)
	case *netlist.Match:
		c.checkValue(cell, label, x.Value)
		c.checkNet(cell, label, x.En)
	case *netlist.AssignmentList:
		c.checkValue(cell, label, x.Default)
		for _, a := range x.Assignments {
			c.checkNet(cell, label, a.Cond)
			c.checkValue(cell, label, a.Value)
			if a.Start < 0 || a.Start+len(a.Value) > len(x.Default) {
				c.report(cell, fmt.Sprintf("%s: assignment at %d of %d bits exceeds %d-bit default", label, a.Start, len(a.Value), len(x.Default)))
			}
		}
	case *netlist.FlipFlop:
		c.checkValue(cell, label, x.Data)
		c.checkNet(cell, label, x.Clk)
		c.checkNet(cell, label, x.Arst)
	case *netlist.Memory:
		c.checkWidth(cell, label, "depth", x.Depth)
		c.checkWidth(cell, label, "word", x.Width)
		if len(x.Init) > x.Depth {
			c.report(cell, fmt.Sprintf("%s: %d init words for depth %d", label, len(x.Init), x.Depth))
		}
	case *netlist.SyncWritePort:
		c.checkMemory(cell, label, x.Memory)
		c.checkValue(cell, label, x.Addr)
		c.checkValue(cell, label, x.Data)
		c.checkValue(cell, label, x.En)
		c.checkNet(cell, label, x.Clk)
	case *netlist.SyncReadPort:
		c.checkMemory(cell, label, x.Memory)
		c.checkWidth(cell, label, "data", x.Width)
		c.checkValue(cell, label, x.Addr)
		c.checkNet(cell, label, x.Clk)
		c.checkNet(cell, label, x.En)
		for _, wp := range x.TransparentFor {
			port, ok := c.cellAt(wp).(*netlist.SyncWritePort)
			if !ok || port.Memory != x.Memory {
				c.report(cell, fmt.Sprintf("%s: transparent for cell %d, which is not a write port of memory %d", label, wp, x.Memory))
			}
		}
	case *netlist.AsyncReadPort:
		c.checkMemory(cell, label, x.Memory)
		c.checkWidth(cell, label, "data", x.Width)
		c.checkValue(cell, label, x.Addr)
	case *netlist.Instance:
		for _, port := range x.PortsI {
			c.checkValue(cell, label, port.Value)
		}
		for _, port := range x.PortsO {
			c.checkRange(cell, label, "output "+port.Name, port.Start, port.Width)
		}
		for _, port := range x.PortsIO {
			c.checkIOValue(cell, label, port.Value)
		}
	case *netlist.IOBuffer:
		c.checkIOValue(cell, label, x.Port)
		c.checkValue(cell, label, x.O)
		c.checkNet(cell, label, x.OE)
		if len(x.O) != len(x.Port) {
			c.report(cell, fmt.Sprintf("%s: output driver is %d bits for a %d-bit port", label, len(x.O), len(x.Port)))
		}
	default:
		c.report(cell, fmt.Sprintf("%s: unsupported cell kind %T", label, cell))
	}
}

func (c *NetlistCheck) checkOperator(label string, op *netlist.Operator) {
	for _, in := range op.Inputs {
		c.checkValue(op, label, in)
	}
	if !slices.Contains(op.Op.Arities(), len(op.Inputs)) {
		c.report(op, fmt.Sprintf("%s: operator %s does not take %d inputs", label, op.Op, len(op.Inputs)))
		return
	}
	switch {
	case op.Op.IsComparison():
		c.expectWidth(op, label, "result", op.Width, 1)
		c.expectWidth(op, label, "right operand", len(op.Inputs[1]), len(op.Inputs[0]))
	case op.Op == netlist.OpBool || op.Op == netlist.OpReduceOr || op.Op == netlist.OpReduceAnd || op.Op == netlist.OpReduceXor:
		c.expectWidth(op, label, "result", op.Width, 1)
	case op.Op == netlist.OpShl || op.Op == netlist.OpUShr || op.Op == netlist.OpSShr:
		c.expectWidth(op, label, "shifted operand", len(op.Inputs[0]), op.Width)
	case op.Op == netlist.OpMux:
		c.expectWidth(op, label, "select", len(op.Inputs[0]), 1)
		c.expectWidth(op, label, "true operand", len(op.Inputs[1]), op.Width)
		c.expectWidth(op, label, "false operand", len(op.Inputs[2]), op.Width)
	default:
		for i, in := range op.Inputs {
			c.expectWidth(op, label, fmt.Sprintf("operand %d", i), len(in), op.Width)
		}
	}
}

func (c *NetlistCheck) expectWidth(cell netlist.Cell, label, what string, got, want int) {
	if got != want {
		c.report(cell, fmt.Sprintf("%s: %s is %d bits, expected %d", label, what, got, want))
	}
}

func (c *NetlistCheck) checkWidth(cell netlist.Cell, label, what string, width int) {
	if width < 0 {
		c.report(cell, fmt.Sprintf("%s: %s has negative width %d", label, what, width))
	}
}

// checkRange verifies a port's span of its cell's output bits.
func (c *NetlistCheck) checkRange(cell netlist.Cell, label, what string, start, width int) {
	c.checkWidth(cell, label, what, width)
	if start < 0 {
		c.report(cell, fmt.Sprintf("%s: %s starts at negative bit %d", label, what, start))
	}
}

func (c *NetlistCheck) cellAt(index int) netlist.Cell {
	if index < 0 || index >= len(c.nl.Cells) {
		return nil
	}
	return c.nl.Cells[index]
}

func (c *NetlistCheck) checkMemory(cell netlist.Cell, label string, memory int) {
	if _, ok := c.cellAt(memory).(*netlist.Memory); !ok {
		c.report(cell, fmt.Sprintf("%s: cell %d is not a memory", label, memory))
	}
}

func (c *NetlistCheck) checkValue(cell netlist.Cell, label string, value netlist.Value) {
	for _, net := range value {
		c.checkNet(cell, label, net)
	}
}

func (c *NetlistCheck) checkNet(cell netlist.Cell, label string, net netlist.Net) {
	if net.IsConst() {
		if net.Bit != 0 && net.Bit != 1 {
			c.report(cell, fmt.Sprintf("%s: constant net %d is not a bit", label, net.Bit))
		}
		return
	}
	if c.cellAt(net.Cell) == nil {
		c.report(cell, fmt.Sprintf("%s: net %s refers to unknown cell", label, net))
		return
	}
	if width := c.nl.OutputWidth(net.Cell); net.Bit < 0 || net.Bit >= width {
		c.report(cell, fmt.Sprintf("%s: net %s is outside the %d-bit output of cell %d", label, net, width, net.Cell))
	}
}

func (c *NetlistCheck) checkIOValue(cell netlist.Cell, label string, value netlist.IOValue) {
	for _, net := range value {
		if net.Port < 0 || net.Port >= len(c.nl.IOPorts) {
			c.report(cell, fmt.Sprintf("%s: io port %d does not exist", label, net.Port))
			continue
		}
		if port := c.nl.IOPorts[net.Port]; net.Bit < 0 || net.Bit >= port.Width {
			c.report(cell, fmt.Sprintf("%s: bit %d is outside io port %q", label, net.Bit, port.Name))
		}
	}
}

func (c *NetlistCheck) report(cell netlist.Cell, msg string) {
	c.failed = true
	if c.reporter == nil {
		return
	}
	if cell != nil {
		if src := cell.Common().Src; src != nil {
			c.reporter.Error(diag.Location{File: src.File, Line: src.Line}, msg)
			return
		}
	}
	c.reporter.Errorf("%s", msg)
}

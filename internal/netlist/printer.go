package netlist

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a simple human-readable representation of the netlist.
func Dump(nl *Netlist, w io.Writer) {
	if nl == nil {
		fmt.Fprintln(w, "<nil netlist>")
		return
	}
	dumpIOPorts(nl, w)
	dumpModules(nl, w)
	dumpCells(nl, w)
}

func dumpIOPorts(nl *Netlist, w io.Writer) {
	if len(nl.IOPorts) == 0 {
		return
	}
	fmt.Fprintln(w, "io ports:")
	for idx, port := range nl.IOPorts {
		fmt.Fprintf(w, "  %-3d %-8s %db\n", idx, port.Name, port.Width)
	}
}

func dumpModules(nl *Netlist, w io.Writer) {
	if len(nl.Modules) == 0 {
		return
	}
	fmt.Fprintln(w, "modules:")
	for idx, module := range nl.Modules {
		fmt.Fprintf(w, "  %-3d %s", idx, strings.Join(module.Name, "."))
		if module.Parent >= 0 {
			fmt.Fprintf(w, " parent=%d", module.Parent)
		}
		if module.Src != nil {
			fmt.Fprintf(w, " src=%s", module.Src)
		}
		fmt.Fprintln(w)
		for _, sn := range module.SignalNames {
			value := Value(nil)
			if sn.Signal >= 0 && sn.Signal < len(nl.Signals) {
				value = nl.Signals[sn.Signal]
			}
			fmt.Fprintf(w, "      %-8s = %s\n", sn.Name, value)
		}
	}
}

func dumpCells(nl *Netlist, w io.Writer) {
	fmt.Fprintln(w, "cells:")
	for idx, cell := range nl.Cells {
		fmt.Fprintf(w, "  %-3d %-10s %s", idx, KindName(cell), renderCell(cell))
		if src := cell.Common().Src; src != nil {
			fmt.Fprintf(w, " (%s)", src)
		}
		fmt.Fprintln(w)
	}
}

func renderCell(cell Cell) string {
	switch c := cell.(type) {
	case *Top:
		parts := make([]string, 0, len(c.PortsI)+len(c.PortsO))
		for _, p := range c.PortsI {
			parts = append(parts, fmt.Sprintf("in %s[%d:%d]", p.Name, p.Start, p.Start+p.Width))
		}
		for _, p := range c.PortsO {
			parts = append(parts, fmt.Sprintf("out %s=%s", p.Name, p.Value))
		}
		return strings.Join(parts, ", ")
	case *Operator:
		inputs := make([]string, 0, len(c.Inputs))
		for _, in := range c.Inputs {
			inputs = append(inputs, in.String())
		}
		return fmt.Sprintf("%s/%d (%s)", c.Op, c.Width, strings.Join(inputs, ", "))
	case *Part:
		return fmt.Sprintf("%s[%s*%d +: %d]%s", c.Value, c.Offset, c.Stride, c.Width, signSuffix(c.Signed))
	case *Match:
		return fmt.Sprintf("%s en=%s %d patterns", c.Value, c.En, len(c.Patterns))
	case *AssignmentList:
		return fmt.Sprintf("%s with %d assignments", c.Default, len(c.Assignments))
	case *FlipFlop:
		return fmt.Sprintf("%s clk=%s/%s arst=%s init=%s", c.Data, c.Clk, c.ClkEdge, c.Arst, c.Init.Binary())
	case *Memory:
		return fmt.Sprintf("%dx%d, %d init words", c.Depth, c.Width, len(c.Init))
	case *SyncWritePort:
		return fmt.Sprintf("mem=%d addr=%s data=%s", c.Memory, c.Addr, c.Data)
	case *SyncReadPort:
		return fmt.Sprintf("mem=%d addr=%s width=%d clk=%s/%s", c.Memory, c.Addr, c.Width, c.Clk, c.ClkEdge)
	case *AsyncReadPort:
		return fmt.Sprintf("mem=%d addr=%s width=%d", c.Memory, c.Addr, c.Width)
	case *Instance:
		return fmt.Sprintf("%s (%d params, %d in, %d out, %d io)", c.Type, len(c.Parameters), len(c.PortsI), len(c.PortsO), len(c.PortsIO))
	case *IOBuffer:
		return fmt.Sprintf("%d pins o=%s oe=%s", len(c.Port), c.O, c.OE)
	default:
		return fmt.Sprintf("<unknown cell %T>", cell)
	}
}

func signSuffix(signed bool) string {
	if signed {
		return "s"
	}
	return "u"
}

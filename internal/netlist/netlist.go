package netlist

import (
	"fmt"
	"math/big"
	"strings"
)

// Netlist is a fully elaborated cell graph. Cell 0 is always the Top cell,
// whose output bits are the design's input ports.
type Netlist struct {
	Cells   []Cell
	IOPorts []IOPort
	Modules []*Module
	// Signals holds the value of every named signal, indexed by signal id.
	Signals []Value
}

// Top returns cell 0 as a *Top, or nil if the netlist is malformed.
func (nl *Netlist) Top() *Top {
	if nl == nil || len(nl.Cells) == 0 {
		return nil
	}
	top, _ := nl.Cells[0].(*Top)
	return top
}

// Module models one level of the design hierarchy.
type Module struct {
	// Name is the hierarchical path, outermost first.
	Name        []string
	Parent      int // -1 for the root module
	Src         *SrcLoc
	SignalNames []SignalName
}

// SignalName binds a signal id to the name it was declared with in a module.
type SignalName struct {
	Signal int
	Name   string
}

// SrcLoc identifies a line in a source file.
type SrcLoc struct {
	File string
	Line int
}

func (s SrcLoc) String() string {
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

// IOPort is a physical IO pin group.
type IOPort struct {
	Name  string
	Width int
}

// Net references a single bit: either a constant or one output bit of a cell.
type Net struct {
	Cell int // -1 for constants
	Bit  int
}

// ConstNet returns the constant net for v, which must be 0 or 1.
func ConstNet(v int) Net {
	if v != 0 && v != 1 {
		panic(fmt.Sprintf("netlist: constant net must be 0 or 1, got %d", v))
	}
	return Net{Cell: -1, Bit: v}
}

// CellNet returns bit of the output of cell.
func CellNet(cell, bit int) Net {
	return Net{Cell: cell, Bit: bit}
}

// IsConst reports whether n is a constant net.
func (n Net) IsConst() bool {
	return n.Cell < 0
}

func (n Net) String() string {
	if n.IsConst() {
		return fmt.Sprintf("%d", n.Bit)
	}
	return fmt.Sprintf("@%d+%d", n.Cell, n.Bit)
}

// Value is a bit-vector; index 0 is the least significant bit.
type Value []Net

// CellValue returns width consecutive output bits of cell, starting at start.
func CellValue(cell, start, width int) Value {
	v := make(Value, width)
	for i := range v {
		v[i] = CellNet(cell, start+i)
	}
	return v
}

// ConstValue returns the width-bit constant value of c.
func ConstValue(c Const) Value {
	v := make(Value, c.Width)
	for i := range v {
		v[i] = ConstNet(int(c.Bit(i)))
	}
	return v
}

func (v Value) String() string {
	parts := make([]string, 0, len(v))
	for i := len(v) - 1; i >= 0; i-- {
		parts = append(parts, v[i].String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// IONet references one bit of an IO port.
type IONet struct {
	Port int
	Bit  int
}

// IOValue is a bit-vector of IO nets, least significant first.
type IOValue []IONet

// PortValue returns all bits of IO port index port, given its width.
func PortValue(port, width int) IOValue {
	v := make(IOValue, width)
	for i := range v {
		v[i] = IONet{Port: port, Bit: i}
	}
	return v
}

// Const is a fixed-width bit pattern. Negative values render in two's
// complement.
type Const struct {
	Value *big.Int
	Width int
}

// NewConst builds a Const from an int64.
func NewConst(v int64, width int) Const {
	return Const{Value: big.NewInt(v), Width: width}
}

// Bit returns bit i of the two's complement representation of c.
func (c Const) Bit(i int) uint {
	if c.Value == nil {
		return 0
	}
	// big.Int.Bit already uses two's complement for negative values.
	return c.Value.Bit(i)
}

// Binary renders c most-significant bit first, zero padded to c.Width.
func (c Const) Binary() string {
	var b strings.Builder
	for i := c.Width - 1; i >= 0; i-- {
		if c.Bit(i) == 1 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Attribute is a named value attached to flip-flops, memories and instances.
// Value holds an int, a Const or a string.
type Attribute struct {
	Name  string
	Value any
}

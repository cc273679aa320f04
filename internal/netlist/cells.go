package netlist

// Cell is implemented by every netlist node.
type Cell interface {
	Common() *CellCommon
}

// CellCommon carries the fields shared by all cells.
type CellCommon struct {
	ModuleIdx int
	Src       *SrcLoc
}

// Common implements Cell.
func (c *CellCommon) Common() *CellCommon { return c }

// Top is cell 0; its output bits are the design's input ports.
type Top struct {
	CellCommon
	PortsI []InputPort
	PortsO []OutputPort
}

// InputPort is a named range of Top's output bits.
type InputPort struct {
	Name  string
	Start int
	Width int
}

// OutputPort is a named top-level output value.
type OutputPort struct {
	Name  string
	Value Value
}

// Operator is a generic arithmetic/logic cell.
type Operator struct {
	CellCommon
	Op     Op
	Inputs []Value
	Width  int
}

// Part is a dynamic bit-select: Width bits of Value starting at Offset*Stride.
type Part struct {
	CellCommon
	Value  Value
	Signed bool
	Offset Value
	Stride int
	Width  int
}

// Match compares Value against one group of alternative patterns per output
// bit. Pattern characters are '0', '1' or '-' (don't care).
type Match struct {
	CellCommon
	Value    Value
	En       Net
	Patterns [][]string
}

// AssignmentList models a chain of partial, prioritized assignments.
type AssignmentList struct {
	CellCommon
	Default     Value
	Assignments []Assignment
}

// Assignment replaces bits Start..Start+len(Value) when Cond is set.
type Assignment struct {
	Cond  Net
	Start int
	Value Value
}

// Edge selects the active clock edge.
type Edge int

const (
	PosEdge Edge = iota
	NegEdge
)

func (e Edge) String() string {
	if e == NegEdge {
		return "neg"
	}
	return "pos"
}

// FlipFlop is a D flip-flop with optional asynchronous reset.
type FlipFlop struct {
	CellCommon
	Data       Value
	Init       Const
	Clk        Net
	ClkEdge    Edge
	Arst       Net
	Attributes []Attribute
}

// Memory is a RAM/ROM; its ports are separate cells referencing it.
type Memory struct {
	CellCommon
	Depth      int
	Width      int
	Init       []Const
	Attributes []Attribute
}

// SyncWritePort writes Data to Memory on a clock edge. En is a per-bit mask.
type SyncWritePort struct {
	CellCommon
	Memory  int
	Addr    Value
	Data    Value
	En      Value
	Clk     Net
	ClkEdge Edge
}

// SyncReadPort reads Width bits from Memory on a clock edge.
type SyncReadPort struct {
	CellCommon
	Memory  int
	Addr    Value
	Width   int
	En      Net
	Clk     Net
	ClkEdge Edge
	// TransparentFor lists write port cell indices whose data passes through.
	TransparentFor []int
}

// AsyncReadPort reads Width bits from Memory combinationally.
type AsyncReadPort struct {
	CellCommon
	Memory int
	Addr   Value
	Width  int
}

// Instance is an opaque black-box submodule.
type Instance struct {
	CellCommon
	Type       string
	Parameters []Parameter
	PortsI     []InstanceInput
	PortsO     []InstanceOutput
	PortsIO    []InstanceIO
	Attributes []Attribute
}

// Parameter values are int, Const or string.
type Parameter struct {
	Name  string
	Value any
}

// InstanceInput connects a value to a named instance input.
type InstanceInput struct {
	Name  string
	Value Value
}

// InstanceOutput is a named range of the instance's output bits.
type InstanceOutput struct {
	Name  string
	Start int
	Width int
}

// IODirection enumerates IO port directions on instances.
type IODirection int

const (
	DirInput IODirection = iota
	DirOutput
	DirInOut
)

func (d IODirection) String() string {
	switch d {
	case DirInput:
		return "i"
	case DirOutput:
		return "o"
	default:
		return "io"
	}
}

// InstanceIO connects physical IO nets to a named instance port.
type InstanceIO struct {
	Name  string
	Value IOValue
	Dir   IODirection
}

// IOBuffer drives Port with O when OE is set; its output is the pad value.
type IOBuffer struct {
	CellCommon
	Port IOValue
	O    Value
	OE   Net
}

// OutputWidth returns the number of output bits cell i exposes to other cells.
func (nl *Netlist) OutputWidth(i int) int {
	switch c := nl.Cells[i].(type) {
	case *Top:
		width := 0
		for _, p := range c.PortsI {
			width = max(width, p.Start+p.Width)
		}
		return width
	case *Operator:
		return c.Width
	case *Part:
		return c.Width
	case *Match:
		return len(c.Patterns)
	case *AssignmentList:
		return len(c.Default)
	case *FlipFlop:
		return len(c.Data)
	case *SyncReadPort:
		return c.Width
	case *AsyncReadPort:
		return c.Width
	case *Instance:
		width := 0
		for _, p := range c.PortsO {
			width = max(width, p.Start+p.Width)
		}
		return width
	case *IOBuffer:
		return len(c.Port)
	default:
		return 0
	}
}

// KindName returns a short, stable name for the kind of c.
func KindName(c Cell) string {
	switch c.(type) {
	case *Top:
		return "top"
	case *Operator:
		return "op"
	case *Part:
		return "part"
	case *Match:
		return "match"
	case *AssignmentList:
		return "assignlist"
	case *FlipFlop:
		return "dff"
	case *Memory:
		return "memory"
	case *SyncWritePort:
		return "write"
	case *SyncReadPort:
		return "syncread"
	case *AsyncReadPort:
		return "asyncread"
	case *Instance:
		return "instance"
	case *IOBuffer:
		return "iobuf"
	default:
		return "unknown"
	}
}

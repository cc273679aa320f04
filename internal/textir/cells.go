package textir

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"netir/internal/netlist"
)

// ReadRelation classifies what a synchronous read port observes when a write
// port writes the same address in the same cycle.
type ReadRelation int

const (
	Undefined ReadRelation = iota
	ReadFirst
	Transparent
)

func (r ReadRelation) String() string {
	switch r {
	case Transparent:
		return "trans"
	case ReadFirst:
		return "rdfirst"
	default:
		return "undef"
	}
}

// readRelation returns the relation between read port rp and the write port
// at cell index wpIndex.
func readRelation(rp *netlist.SyncReadPort, wpIndex int, wp *netlist.SyncWritePort) ReadRelation {
	if slices.Contains(rp.TransparentFor, wpIndex) {
		return Transparent
	}
	if wp.Clk == rp.Clk && wp.ClkEdge == rp.ClkEdge {
		return ReadFirst
	}
	return Undefined
}

func (e *emitter) reserveCell(index int, cell netlist.Cell) {
	switch c := cell.(type) {
	case *netlist.Top:
		if index != 0 {
			e.fail(fmt.Errorf("%w: top cell at index %d", ErrInconsistent, index))
		}
	case *netlist.Operator:
		e.reserveOperator(index, c)
	case *netlist.Part:
		if !e.validWidth("part result", c.Width) {
			return
		}
		id := e.slots.reserve(max(c.Width, len(c.Value)))
		e.cellSlots[index] = []int{id}
		e.bind(netlist.CellValue(index, 0, c.Width), e.slots.output(id)[:c.Width])
	case *netlist.Match:
		e.reserveSingle(index, len(c.Patterns))
	case *netlist.AssignmentList:
		width := len(c.Default)
		slots := make([]int, max(1, len(c.Assignments)))
		for i := range slots {
			slots[i] = e.slots.reserve(width)
		}
		e.cellSlots[index] = slots
		e.bind(netlist.CellValue(index, 0, width), e.slots.output(slots[len(slots)-1]))
	case *netlist.FlipFlop:
		e.reserveSingle(index, len(c.Data))
	case *netlist.Memory:
		e.reserveMemory(index, c)
	case *netlist.SyncWritePort, *netlist.SyncReadPort, *netlist.AsyncReadPort:
		// Read port outputs are part of the memory's slot.
	case *netlist.Instance:
		e.reserveInstance(index, c)
	case *netlist.IOBuffer:
		e.reserveSingle(index, len(c.Port))
	default:
		e.fail(fmt.Errorf("%w: %T", ErrUnsupportedCell, cell))
	}
}

func (e *emitter) reserveSingle(index, width int) {
	id := e.slots.reserve(width)
	e.cellSlots[index] = []int{id}
	e.bind(netlist.CellValue(index, 0, width), e.slots.output(id))
}

// reserveMemory allocates one slot holding every read port's data, in port
// order. Write ports get no output.
func (e *emitter) reserveMemory(index int, c *netlist.Memory) {
	if !e.validWidth("memory depth", c.Depth) || !e.validWidth("memory word", c.Width) {
		return
	}
	width := 0
	for _, portIndex := range e.memPorts[index] {
		w := readPortWidth(e.nl.Cells[portIndex])
		if !e.validWidth(fmt.Sprintf("read port %d", portIndex), w) {
			return
		}
		width += w
	}
	id := e.slots.reserve(width)
	e.cellSlots[index] = []int{id}
	out := e.slots.output(id)
	offset := 0
	for _, portIndex := range e.memPorts[index] {
		w := readPortWidth(e.nl.Cells[portIndex])
		if w == 0 {
			continue
		}
		e.bind(netlist.CellValue(portIndex, 0, w), out[offset:offset+w])
		offset += w
	}
}

func readPortWidth(cell netlist.Cell) int {
	switch p := cell.(type) {
	case *netlist.SyncReadPort:
		return p.Width
	case *netlist.AsyncReadPort:
		return p.Width
	default:
		return 0
	}
}

// reserveInstance allocates one slot per output port range. An instance
// without outputs gets a zero-width placeholder.
func (e *emitter) reserveInstance(index int, c *netlist.Instance) {
	slots := make([]int, 0, max(1, len(c.PortsO)))
	for _, port := range c.PortsO {
		if !e.validWidth("output "+port.Name, port.Width) {
			return
		}
		id := e.slots.reserve(port.Width)
		slots = append(slots, id)
		e.bind(netlist.CellValue(index, port.Start, port.Width), e.slots.output(id))
	}
	if len(slots) == 0 {
		slots = append(slots, e.slots.reserve(0))
	}
	e.cellSlots[index] = slots
}

func (e *emitter) emitCell(index int, cell netlist.Cell) {
	switch c := cell.(type) {
	case *netlist.Top:
	case *netlist.Operator:
		e.emitOperator(index, c)
	case *netlist.Part:
		e.emitPart(index, c)
	case *netlist.Match:
		e.emitMatch(index, c)
	case *netlist.AssignmentList:
		e.emitAssignmentList(index, c)
	case *netlist.FlipFlop:
		e.emitFlipFlop(index, c)
	case *netlist.Memory:
		e.emitMemory(index, c)
	case *netlist.SyncWritePort, *netlist.SyncReadPort, *netlist.AsyncReadPort:
		// Emitted inside their memory's block.
	case *netlist.Instance:
		e.emitInstance(index, c)
	case *netlist.IOBuffer:
		id := e.cellSlots[index][0]
		meta := e.cellMeta(c, nil)
		e.inst(id, meta, "iobuf", e.ioValue(c.Port), "o="+e.value(c.O), "en="+e.net(c.OE))
	default:
		e.fail(fmt.Errorf("%w: %T", ErrUnsupportedCell, cell))
	}
}

// emitPart extends the source to the result width and shifts it right by
// offset*stride.
func (e *emitter) emitPart(index int, c *netlist.Part) {
	id := e.cellSlots[index][0]
	value := e.resolve(c.Value)
	if pad := c.Width - len(value); pad > 0 {
		fill := literal(0)
		if c.Signed && len(value) > 0 {
			fill = value[len(value)-1]
		}
		value = append(value, repeat(fill, pad)...)
	}
	opcode := "ushr"
	if c.Signed {
		opcode = "sshr"
	}
	meta := e.cellMeta(c, nil)
	e.inst(id, meta, opcode, e.slots.render(value), e.value(c.Offset), "#"+strconv.Itoa(c.Stride))
}

func (e *emitter) emitMatch(index int, c *netlist.Match) {
	id := e.cellSlots[index][0]
	meta := e.cellMeta(c, nil)
	e.openInst(e.instHeader(id, "match", []string{"en=" + e.net(c.En), e.value(c.Value)}), meta)
	for _, alternatives := range c.Patterns {
		patterns := make([]string, len(alternatives))
		for i, pattern := range alternatives {
			patterns[i] = strings.ReplaceAll(pattern, "-", "X")
		}
		if len(patterns) == 1 {
			e.out.line(patterns[0])
		} else {
			e.out.line("(" + strings.Join(patterns, " ") + ")")
		}
	}
	e.out.close()
}

// emitAssignmentList folds the assignments left to right over the default.
func (e *emitter) emitAssignmentList(index int, c *netlist.AssignmentList) {
	slots := e.cellSlots[index]
	meta := e.cellMeta(c, nil)
	if len(c.Assignments) == 0 {
		e.inst(slots[0], meta, "buf", e.value(c.Default))
		return
	}
	prev := e.value(c.Default)
	for i, assignment := range c.Assignments {
		e.inst(slots[i], meta, "assign",
			"en="+e.net(assignment.Cond),
			prev,
			e.value(assignment.Value),
			"at=#"+strconv.Itoa(assignment.Start),
		)
		prev = e.slot(slots[i])
	}
}

func (e *emitter) clock(clk netlist.Net, edge netlist.Edge) string {
	if edge == netlist.NegEdge {
		return "!" + e.net(clk)
	}
	return e.net(clk)
}

func (e *emitter) emitFlipFlop(index int, c *netlist.FlipFlop) {
	id := e.cellSlots[index][0]
	meta := e.cellMeta(c, c.Attributes)
	init := netlist.Const{Value: c.Init.Value, Width: len(c.Data)}
	args := []string{e.value(c.Data), "clk=" + e.clock(c.Clk, c.ClkEdge)}
	if c.Arst != netlist.ConstNet(0) {
		args = append(args, "arst="+e.net(c.Arst))
	}
	args = append(args, "init="+init.Binary())
	e.inst(id, meta, "dff", args...)
}

func (e *emitter) emitMemory(index int, c *netlist.Memory) {
	id := e.cellSlots[index][0]
	meta := e.cellMeta(c, c.Attributes)
	header := e.instHeader(id, "memory", []string{
		"depth=#" + strconv.Itoa(c.Depth),
		"width=#" + strconv.Itoa(c.Width),
	})
	e.openInst(header, meta)
	defer e.out.close()

	for _, word := range c.Init {
		e.out.line("init " + netlist.Const{Value: word.Value, Width: c.Width}.Binary())
	}

	var writePorts []int
	for _, portIndex := range e.memPorts[index] {
		if _, ok := e.nl.Cells[portIndex].(*netlist.SyncWritePort); ok {
			writePorts = append(writePorts, portIndex)
		}
	}

	for _, portIndex := range e.memPorts[index] {
		switch port := e.nl.Cells[portIndex].(type) {
		case *netlist.SyncWritePort:
			e.out.line(fmt.Sprintf("write addr=%s data=%s mask=%s clk=%s",
				e.value(port.Addr), e.value(port.Data), e.value(port.En), e.clock(port.Clk, port.ClkEdge)))
		case *netlist.AsyncReadPort:
			e.out.line(fmt.Sprintf("read addr=%s width=#%d", e.value(port.Addr), port.Width))
		case *netlist.SyncReadPort:
			relations := make([]string, len(writePorts))
			for i, wpIndex := range writePorts {
				wp := e.nl.Cells[wpIndex].(*netlist.SyncWritePort)
				relations[i] = readRelation(port, wpIndex, wp).String()
			}
			e.out.line(fmt.Sprintf("read addr=%s width=#%d clk=%s en=%s [%s]",
				e.value(port.Addr), port.Width, e.clock(port.Clk, port.ClkEdge), e.net(port.En), strings.Join(relations, " ")))
		}
	}
}

func (e *emitter) emitInstance(index int, c *netlist.Instance) {
	slots := e.cellSlots[index]
	meta := e.cellMeta(c, c.Attributes)
	// Validate parameters before opening the block so a failure leaves no
	// dangling header.
	params := make([]string, len(c.Parameters))
	for i, param := range c.Parameters {
		text, err := literalValue(param.Value)
		if err != nil {
			e.fail(fmt.Errorf("parameter %s: %w", param.Name, err))
			return
		}
		params[i] = text
	}

	e.openInst(fmt.Sprintf("%%%d:_ = %s", slots[0], Escape(c.Type)), meta)
	for i, param := range c.Parameters {
		e.out.line(fmt.Sprintf("param %s = %s", Escape(param.Name), params[i]))
	}
	for _, port := range c.PortsI {
		e.out.line(fmt.Sprintf("input %s = %s", Escape(port.Name), e.value(port.Value)))
	}
	for i, port := range c.PortsO {
		e.out.line(fmt.Sprintf("%%%d:%d = output %s", slots[i], port.Width, Escape(port.Name)))
	}
	for _, port := range c.PortsIO {
		e.out.line(fmt.Sprintf("io %s %s = %s", port.Dir, Escape(port.Name), e.ioValue(port.Value)))
	}
	e.out.close()
}

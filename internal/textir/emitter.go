// Package textir lowers a netlist into a flat, line-oriented instruction
// listing. Operators that have no primitive counterpart are decomposed into
// primitive sequences, every cell output is assigned a slot before any
// instruction is written, and debug metadata is interned by content.
package textir

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"netir/internal/netlist"
)

// Options controls emission.
type Options struct {
	// OmitMetadata suppresses all "!" records and instruction metadata.
	OmitMetadata bool
}

// Emit lowers nl and returns the complete text. On error no text is returned.
func Emit(nl *netlist.Netlist, opts Options) (string, error) {
	if nl == nil {
		return "", fmt.Errorf("textir: netlist is nil")
	}
	e := newEmitter(nl, opts)
	if err := e.run(); err != nil {
		return "", err
	}
	return e.out.String(), nil
}

// WriteFile emits nl to outputPath. When outputPath is empty or "-", the
// result is written to stdout.
func WriteFile(nl *netlist.Netlist, outputPath string, opts Options) error {
	text, err := Emit(nl, opts)
	if err != nil {
		return err
	}
	var w io.Writer
	if outputPath == "" || outputPath == "-" {
		w = os.Stdout
	} else {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return err
		}
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err = io.WriteString(w, text)
	return err
}

type emitter struct {
	nl    *netlist.Netlist
	opts  Options
	out   blockWriter
	slots slotAllocator
	nets  map[netlist.Net]operand
	// cellSlots holds, per cell index, the slots reserved for it in order.
	cellSlots [][]int
	// memPorts lists the port cells of each memory cell, in netlist order.
	memPorts [][]int
	meta     *interner
	scopes   []int
	err      error
}

func newEmitter(nl *netlist.Netlist, opts Options) *emitter {
	e := &emitter{
		nl:        nl,
		opts:      opts,
		nets:      make(map[netlist.Net]operand),
		cellSlots: make([][]int, len(nl.Cells)),
		memPorts:  make([][]int, len(nl.Cells)),
	}
	e.meta = newInterner(func(id int, record string) {
		e.out.line(fmt.Sprintf("!%d = %s", id, record))
	})
	return e
}

// fail records the first error; later calls are ignored.
func (e *emitter) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// validWidth fails the run when width is negative.
func (e *emitter) validWidth(what string, width int) bool {
	if width < 0 {
		e.fail(fmt.Errorf("%w: %s has negative width %d", ErrInconsistent, what, width))
		return false
	}
	return true
}

func (e *emitter) cellFail(index int, err error) error {
	if err == nil {
		return nil
	}
	return &CellError{Index: index, Kind: netlist.KindName(e.nl.Cells[index]), Err: err}
}

func (e *emitter) run() error {
	top := e.nl.Top()
	if top == nil {
		return fmt.Errorf("textir: %w: cell 0 is not the top cell", ErrInconsistent)
	}

	for _, port := range e.nl.IOPorts {
		if port.Width < 0 {
			return fmt.Errorf("textir: %w: io port %s has negative width %d", ErrInconsistent, port.Name, port.Width)
		}
		e.out.line(fmt.Sprintf("&%s:%d", Escape(port.Name), port.Width))
	}

	if err := e.internScopes(); err != nil {
		return err
	}
	topMeta, err := e.moduleScope(top.ModuleIdx)
	if err != nil {
		return err
	}

	for _, port := range top.PortsI {
		if !e.validWidth("input "+port.Name, port.Width) {
			break
		}
		id := e.slots.reserve(port.Width)
		e.bind(netlist.CellValue(0, port.Start, port.Width), e.slots.output(id))
		e.inst(id, topMeta, "input", Escape(port.Name))
	}
	if e.err != nil {
		return e.cellFail(0, e.err)
	}

	if err := e.collectMemoryPorts(); err != nil {
		return err
	}
	for index, cell := range e.nl.Cells {
		e.reserveCell(index, cell)
		if e.err != nil {
			return e.cellFail(index, e.err)
		}
	}
	for index, cell := range e.nl.Cells {
		e.emitCell(index, cell)
		if e.err != nil {
			return e.cellFail(index, e.err)
		}
	}

	for _, port := range top.PortsO {
		id := e.slots.reserve(0)
		e.inst(id, topMeta, "output", Escape(port.Name), e.value(port.Value))
	}
	if e.err != nil {
		return e.cellFail(0, e.err)
	}

	return e.emitNames()
}

// internScopes interns one scope record per module, parents first.
func (e *emitter) internScopes() error {
	e.scopes = make([]int, len(e.nl.Modules))
	for i := range e.scopes {
		e.scopes[i] = -2
	}
	for i := range e.nl.Modules {
		if _, err := e.scopeFor(i, 0); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) scopeFor(idx, depth int) (int, error) {
	if idx < 0 || idx >= len(e.nl.Modules) {
		return -1, fmt.Errorf("textir: %w: module %d does not exist", ErrInconsistent, idx)
	}
	if e.scopes[idx] != -2 {
		return e.scopes[idx], nil
	}
	if depth > len(e.nl.Modules) {
		return -1, fmt.Errorf("textir: %w: module %d has a cyclic parent chain", ErrInconsistent, idx)
	}
	module := e.nl.Modules[idx]
	if e.opts.OmitMetadata {
		e.scopes[idx] = -1
		return -1, nil
	}
	parent := -1
	if module.Parent >= 0 {
		var err error
		if parent, err = e.scopeFor(module.Parent, depth+1); err != nil {
			return -1, err
		}
	}
	src := -1
	if module.Src != nil {
		src = e.meta.sourceLoc(module.Src.File, module.Src.Line)
	}
	e.scopes[idx] = e.meta.scope(module.Name, parent, src)
	return e.scopes[idx], nil
}

func (e *emitter) moduleScope(idx int) (int, error) {
	if len(e.nl.Modules) == 0 {
		return -1, nil
	}
	if idx < 0 || idx >= len(e.scopes) {
		return -1, fmt.Errorf("textir: %w: module %d does not exist", ErrInconsistent, idx)
	}
	return e.scopes[idx], nil
}

// cellMeta merges the module scope, source location and attributes of a cell.
func (e *emitter) cellMeta(cell netlist.Cell, attrs []netlist.Attribute) int {
	if e.opts.OmitMetadata {
		// Attribute values are validated even when no records are written.
		for _, attr := range attrs {
			if _, err := literalValue(attr.Value); err != nil {
				e.fail(fmt.Errorf("attribute %s: %w", attr.Name, err))
				return -1
			}
		}
		return -1
	}
	common := cell.Common()
	scope, err := e.moduleScope(common.ModuleIdx)
	if err != nil {
		e.fail(err)
		return -1
	}
	ids := []int{scope}
	if common.Src != nil {
		ids = append(ids, e.meta.sourceLoc(common.Src.File, common.Src.Line))
	}
	for _, attr := range attrs {
		id, err := e.meta.attr(attr.Name, attr.Value)
		if err != nil {
			e.fail(err)
			return -1
		}
		ids = append(ids, id)
	}
	return e.meta.merge(ids...)
}

func (e *emitter) collectMemoryPorts() error {
	for index, cell := range e.nl.Cells {
		var memory int
		switch c := cell.(type) {
		case *netlist.SyncWritePort:
			memory = c.Memory
		case *netlist.SyncReadPort:
			memory = c.Memory
		case *netlist.AsyncReadPort:
			memory = c.Memory
		default:
			continue
		}
		if memory < 0 || memory >= len(e.nl.Cells) {
			return e.cellFail(index, fmt.Errorf("%w: memory %d does not exist", ErrInconsistent, memory))
		}
		if _, ok := e.nl.Cells[memory].(*netlist.Memory); !ok {
			return e.cellFail(index, fmt.Errorf("%w: cell %d is not a memory", ErrInconsistent, memory))
		}
		e.memPorts[memory] = append(e.memPorts[memory], index)
	}
	return nil
}

// emitNames writes one name record per declared signal.
func (e *emitter) emitNames() error {
	for idx, module := range e.nl.Modules {
		for _, sn := range module.SignalNames {
			if sn.Signal < 0 || sn.Signal >= len(e.nl.Signals) {
				return fmt.Errorf("textir: %w: signal %d does not exist", ErrInconsistent, sn.Signal)
			}
			value := e.nl.Signals[sn.Signal]
			path := append(append([]string{}, module.Name...), sn.Name)
			meta := -1
			if !e.opts.OmitMetadata {
				meta = e.meta.ident(sn.Name, e.scopes[idx])
			}
			id := e.slots.reserve(0)
			e.inst(id, meta, "name", Escape(strings.Join(path, " ")), e.value(value))
			if e.err != nil {
				return fmt.Errorf("textir: name %q: %w", sn.Name, e.err)
			}
		}
	}
	return nil
}

// instHeader formats the text of an instruction without its metadata suffix.
func (e *emitter) instHeader(id int, opcode string, args []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%%%d:%d = %s", id, e.slots.width(id), opcode)
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(arg)
	}
	return b.String()
}

func withMeta(text string, meta int) string {
	if meta < 0 {
		return text
	}
	return fmt.Sprintf("%s !%d", text, meta)
}

// inst writes a single-line instruction producing slot id.
func (e *emitter) inst(id, meta int, opcode string, args ...string) {
	e.out.line(withMeta(e.instHeader(id, opcode, args), meta))
}

// openInst writes an instruction header and opens its block.
func (e *emitter) openInst(header string, meta int) {
	e.out.open(withMeta(header, meta))
}

// Package frontend reads the textual netlist format into a netlist.Netlist.
package frontend

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"netir/internal/diag"
	"netir/internal/netlist"
)

// LoadConfig configures how a netlist source file is loaded.
type LoadConfig struct {
	Path string
	// Source, when non-nil, is used instead of reading Path.
	Source []byte
}

var parser = participle.MustBuild[File](
	participle.Lexer(netlistLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// Load parses and builds the netlist described by cfg. Problems are reported
// through reporter; the returned error summarises them.
func Load(cfg LoadConfig, reporter *diag.Reporter) (*netlist.Netlist, error) {
	if reporter == nil {
		reporter = diag.NewReporter(io.Discard, "text")
	}
	source := cfg.Source
	if source == nil {
		data, err := os.ReadFile(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("frontend: read %s: %w", cfg.Path, err)
		}
		source = data
	}
	file, err := parser.ParseBytes(cfg.Path, source)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			reporter.Error(location(perr.Position()), perr.Message())
		} else {
			reporter.Errorf("%s: %v", cfg.Path, err)
		}
		return nil, fmt.Errorf("frontend: syntax errors in %s", cfg.Path)
	}
	b := &builder{reporter: reporter, ioIndex: make(map[string]int)}
	nl := b.build(file)
	if reporter.HasErrors() {
		return nil, fmt.Errorf("frontend: errors reported while building %s", cfg.Path)
	}
	return nl, nil
}

// Parse is a convenience wrapper around Load for in-memory sources that
// discards diagnostic output.
func Parse(filename string, source string) (*netlist.Netlist, error) {
	var errs collectingWriter
	nl, err := Load(LoadConfig{Path: filename, Source: []byte(source)}, diag.NewReporter(&errs, "text"))
	if err != nil && len(errs) > 0 {
		return nil, fmt.Errorf("%w:\n%s", err, errs)
	}
	return nl, err
}

type collectingWriter []byte

func (w *collectingWriter) Write(p []byte) (int, error) {
	*w = append(*w, p...)
	return len(p), nil
}

func location(pos lexer.Position) diag.Location {
	return diag.Location{File: pos.Filename, Line: pos.Line, Column: pos.Column}
}

type builder struct {
	reporter *diag.Reporter
	nl       *netlist.Netlist
	ioIndex  map[string]int
}

func (b *builder) errorf(pos lexer.Position, format string, args ...any) {
	b.reporter.Error(location(pos), fmt.Sprintf(format, args...))
}

func (b *builder) build(file *File) *netlist.Netlist {
	b.nl = &netlist.Netlist{}
	for _, decl := range file.IOPorts {
		if _, dup := b.ioIndex[decl.Name]; dup {
			b.errorf(decl.Pos, "duplicate io port %q", decl.Name)
			continue
		}
		if decl.Width < 0 {
			b.errorf(decl.Pos, "io port %q has negative width %d", decl.Name, decl.Width)
			continue
		}
		b.ioIndex[decl.Name] = len(b.nl.IOPorts)
		b.nl.IOPorts = append(b.nl.IOPorts, netlist.IOPort{Name: decl.Name, Width: decl.Width})
	}
	for _, decl := range file.Modules {
		module := &netlist.Module{Name: decl.Path, Parent: -1}
		if decl.Parent != nil {
			module.Parent = *decl.Parent
		}
		module.Src = srcLoc(decl.Src)
		b.nl.Modules = append(b.nl.Modules, module)
	}
	for i, decl := range file.Cells {
		if decl.Index != i {
			b.errorf(decl.Pos, "cell %d declared at position %d", decl.Index, i)
		}
		cell := b.buildCell(decl)
		if cell == nil {
			continue
		}
		common := cell.Common()
		common.ModuleIdx = decl.Module
		common.Src = srcLoc(decl.Src)
		b.nl.Cells = append(b.nl.Cells, cell)
	}
	for _, decl := range file.Names {
		if decl.Module < 0 || decl.Module >= len(b.nl.Modules) {
			b.errorf(decl.Pos, "name refers to unknown module %d", decl.Module)
			continue
		}
		module := b.nl.Modules[decl.Module]
		module.SignalNames = append(module.SignalNames, netlist.SignalName{Signal: len(b.nl.Signals), Name: decl.Name})
		b.nl.Signals = append(b.nl.Signals, b.value(decl.Value))
	}
	return b.nl
}

func srcLoc(decl *SrcDecl) *netlist.SrcLoc {
	if decl == nil {
		return nil
	}
	return &netlist.SrcLoc{File: decl.File, Line: decl.Line}
}

func (b *builder) buildCell(decl *CellDecl) netlist.Cell {
	switch {
	case decl.Top != nil:
		top := &netlist.Top{}
		for _, port := range decl.Top.Ports {
			if port.Input != nil {
				top.PortsI = append(top.PortsI, netlist.InputPort{Name: port.Input.Name, Start: port.Input.Start, Width: port.Input.Width})
			} else {
				top.PortsO = append(top.PortsO, netlist.OutputPort{Name: port.Output.Name, Value: b.value(port.Output.Value)})
			}
		}
		return top
	case decl.Op != nil:
		op, ok := netlist.ParseOp(decl.Op.Symbol)
		if !ok {
			b.errorf(decl.Pos, "unknown operator %q", decl.Op.Symbol)
			return nil
		}
		c := &netlist.Operator{Op: op, Width: decl.Op.Width}
		for _, in := range decl.Op.Inputs {
			c.Inputs = append(c.Inputs, b.value(in))
		}
		return c
	case decl.Part != nil:
		d := decl.Part
		return &netlist.Part{Value: b.value(d.Value), Signed: d.Signed, Offset: b.value(d.Offset), Stride: d.Stride, Width: d.Width}
	case decl.Match != nil:
		d := decl.Match
		c := &netlist.Match{Value: b.value(d.Value), En: b.net(d.En)}
		for _, group := range d.Patterns {
			for _, pattern := range group.Alternatives {
				if len(pattern) != len(c.Value) {
					b.errorf(decl.Pos, "pattern %q does not match value width %d", pattern, len(c.Value))
				}
			}
			c.Patterns = append(c.Patterns, group.Alternatives)
		}
		return c
	case decl.Assign != nil:
		d := decl.Assign
		c := &netlist.AssignmentList{Default: b.value(d.Default)}
		for _, a := range d.Assignments {
			c.Assignments = append(c.Assignments, netlist.Assignment{Cond: b.net(a.Cond), Start: a.Start, Value: b.value(a.Value)})
		}
		return c
	case decl.DFF != nil:
		d := decl.DFF
		c := &netlist.FlipFlop{
			Data:       b.value(d.Data),
			Clk:        b.net(d.Clk),
			ClkEdge:    edge(d.Edge),
			Arst:       netlist.ConstNet(0),
			Attributes: b.attrs(decl.Pos, d.Attrs),
		}
		if d.Arst != nil {
			c.Arst = b.net(d.Arst)
		}
		c.Init = netlist.Const{Value: b.bigInt(decl.Pos, d.Init), Width: len(c.Data)}
		return c
	case decl.Memory != nil:
		d := decl.Memory
		c := &netlist.Memory{Depth: d.Depth, Width: d.Width, Attributes: b.attrs(decl.Pos, d.Attrs)}
		for _, word := range d.Init {
			c.Init = append(c.Init, netlist.Const{Value: b.bigInt(decl.Pos, word), Width: d.Width})
		}
		return c
	case decl.Write != nil:
		d := decl.Write
		return &netlist.SyncWritePort{
			Memory:  d.Memory,
			Addr:    b.value(d.Addr),
			Data:    b.value(d.Data),
			En:      b.value(d.Mask),
			Clk:     b.net(d.Clk),
			ClkEdge: edge(d.Edge),
		}
	case decl.SyncRead != nil:
		d := decl.SyncRead
		return &netlist.SyncReadPort{
			Memory:         d.Memory,
			Addr:           b.value(d.Addr),
			Width:          d.Width,
			En:             b.net(d.En),
			Clk:            b.net(d.Clk),
			ClkEdge:        edge(d.Edge),
			TransparentFor: d.Transparent,
		}
	case decl.AsyncRead != nil:
		d := decl.AsyncRead
		return &netlist.AsyncReadPort{Memory: d.Memory, Addr: b.value(d.Addr), Width: d.Width}
	case decl.Instance != nil:
		return b.instance(decl)
	case decl.IOBuf != nil:
		d := decl.IOBuf
		return &netlist.IOBuffer{Port: b.ioValue(d.Port), O: b.value(d.O), OE: b.net(d.OE)}
	default:
		b.errorf(decl.Pos, "cell %d has no body", decl.Index)
		return nil
	}
}

func (b *builder) instance(decl *CellDecl) *netlist.Instance {
	c := &netlist.Instance{Type: decl.Instance.Type}
	for _, item := range decl.Instance.Items {
		switch {
		case item.Param != nil:
			c.Parameters = append(c.Parameters, netlist.Parameter{Name: item.Param.Name, Value: b.literal(decl.Pos, item.Param.Value)})
		case item.Attr != nil:
			c.Attributes = append(c.Attributes, b.attrs(decl.Pos, []*AttrDecl{item.Attr})...)
		case item.Input != nil:
			c.PortsI = append(c.PortsI, netlist.InstanceInput{Name: item.Input.Name, Value: b.value(item.Input.Value)})
		case item.Output != nil:
			c.PortsO = append(c.PortsO, netlist.InstanceOutput{Name: item.Output.Name, Start: item.Output.Start, Width: item.Output.Width})
		case item.IO != nil:
			dir := netlist.DirInOut
			switch item.IO.Dir {
			case "i":
				dir = netlist.DirInput
			case "o":
				dir = netlist.DirOutput
			}
			c.PortsIO = append(c.PortsIO, netlist.InstanceIO{Name: item.IO.Name, Value: b.ioValue(item.IO.Value), Dir: dir})
		}
	}
	return c
}

func edge(s string) netlist.Edge {
	if s == "neg" {
		return netlist.NegEdge
	}
	return netlist.PosEdge
}

func (b *builder) attrs(pos lexer.Position, decls []*AttrDecl) []netlist.Attribute {
	attrs := make([]netlist.Attribute, 0, len(decls))
	for _, d := range decls {
		attrs = append(attrs, netlist.Attribute{Name: d.Name, Value: b.literal(pos, d.Value)})
	}
	return attrs
}

// literal converts a parameter or attribute value: integers become int,
// 0b constants become netlist.Const and strings stay strings.
func (b *builder) literal(pos lexer.Position, d *LiteralDecl) any {
	switch {
	case d.Int != nil:
		v, ok := new(big.Int).SetString(*d.Int, 10)
		if !ok || !v.IsInt64() {
			b.errorf(pos, "integer %s out of range", *d.Int)
			return 0
		}
		return int(v.Int64())
	case d.Const != nil:
		digits := (*d.Const)[2:]
		v, _ := new(big.Int).SetString(digits, 2)
		return netlist.Const{Value: v, Width: len(digits)}
	default:
		return *d.Str
	}
}

func (b *builder) bigInt(pos lexer.Position, text string) *big.Int {
	if text == "" {
		return new(big.Int)
	}
	v, ok := new(big.Int).SetString(text, 10)
	if !ok {
		b.errorf(pos, "bad integer %q", text)
		return new(big.Int)
	}
	return v
}

// value flattens a literal written most significant first into a Value.
func (b *builder) value(lit *ValueLit) netlist.Value {
	var v netlist.Value
	for i := len(lit.Items) - 1; i >= 0; i-- {
		item := lit.Items[i]
		if item.Ref == nil {
			for j := len(item.Bits) - 1; j >= 0; j-- {
				switch item.Bits[j] {
				case '0':
					v = append(v, netlist.ConstNet(0))
				case '1':
					v = append(v, netlist.ConstNet(1))
				default:
					b.errorf(lit.Pos, "constant %q is not binary", item.Bits)
					return v
				}
			}
			continue
		}
		ref := item.Ref
		switch {
		case ref.Bit != nil:
			v = append(v, netlist.CellNet(ref.Cell, *ref.Bit))
		case *ref.Width < 0:
			b.errorf(lit.Pos, "negative width %d for cell %d", *ref.Width, ref.Cell)
		default:
			v = append(v, netlist.CellValue(ref.Cell, 0, *ref.Width)...)
		}
	}
	return v
}

func (b *builder) net(lit *NetLit) netlist.Net {
	if lit.Ref != nil {
		return netlist.CellNet(lit.Ref.Cell, lit.Ref.Bit)
	}
	if *lit.Const != 0 && *lit.Const != 1 {
		b.errorf(lit.Pos, "constant net must be 0 or 1, got %d", *lit.Const)
		return netlist.ConstNet(0)
	}
	return netlist.ConstNet(*lit.Const)
}

func (b *builder) ioValue(lit *IOValueLit) netlist.IOValue {
	var v netlist.IOValue
	for i := len(lit.Items) - 1; i >= 0; i-- {
		item := lit.Items[i]
		port, ok := b.ioIndex[item.Port]
		if !ok {
			b.errorf(lit.Pos, "unknown io port %q", item.Port)
			continue
		}
		switch {
		case item.Bit != nil:
			v = append(v, netlist.IONet{Port: port, Bit: *item.Bit})
		case item.Width != nil && *item.Width < 0:
			b.errorf(lit.Pos, "negative width %d for io port %q", *item.Width, item.Port)
		case item.Width != nil:
			v = append(v, netlist.PortValue(port, *item.Width)...)
		default:
			v = append(v, netlist.PortValue(port, b.nl.IOPorts[port].Width)...)
		}
	}
	return v
}

package netlist

import (
	"bytes"
	"strings"
	"testing"
)

func TestConstBinaryPadsAndWraps(t *testing.T) {
	cases := []struct {
		c    Const
		want string
	}{
		{NewConst(5, 4), "0101"},
		{NewConst(-1, 3), "111"},
		{NewConst(-2, 4), "1110"},
		{NewConst(9, 3), "001"},
		{Const{Width: 2}, "00"},
		{NewConst(0, 0), ""},
	}
	for _, tc := range cases {
		if got := tc.c.Binary(); got != tc.want {
			t.Fatalf("Binary(%v/%d) = %q, want %q", tc.c.Value, tc.c.Width, got, tc.want)
		}
	}
}

func TestValueStringIsMostSignificantFirst(t *testing.T) {
	v := append(CellValue(3, 0, 2), ConstNet(1))
	if got, want := v.String(), "[1 @3+1 @3+0]"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if got, want := ConstValue(NewConst(6, 3)).String(), "[1 1 0]"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestConstNetRejectsNonBits(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for ConstNet(2)")
		}
	}()
	ConstNet(2)
}

func TestParseOpRoundTrip(t *testing.T) {
	for op := OpNot; op <= OpMux; op++ {
		parsed, ok := ParseOp(op.String())
		if !ok || parsed != op {
			t.Fatalf("ParseOp(%q) = %v, %v", op.String(), parsed, ok)
		}
	}
	if _, ok := ParseOp("**"); ok {
		t.Fatalf("expected unknown operator to fail")
	}
	if got := Op(99).String(); got != "?" {
		t.Fatalf("out-of-range operator printed as %q", got)
	}
}

func TestArities(t *testing.T) {
	cases := map[Op][]int{
		OpSub:       {1, 2},
		OpNot:       {1},
		OpReduceXor: {1},
		OpMux:       {3},
		OpSLe:       {2},
	}
	for op, want := range cases {
		got := op.Arities()
		if len(got) != len(want) {
			t.Fatalf("%s arities = %v, want %v", op, got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("%s arities = %v, want %v", op, got, want)
			}
		}
	}
}

func sampleNetlist() *Netlist {
	return &Netlist{
		IOPorts: []IOPort{{Name: "led", Width: 1}},
		Modules: []*Module{{
			Name:        []string{"top"},
			Parent:      -1,
			Src:         &SrcLoc{File: "top.py", Line: 2},
			SignalNames: []SignalName{{Signal: 0, Name: "sum"}},
		}},
		Signals: []Value{CellValue(1, 0, 3)},
		Cells: []Cell{
			&Top{
				PortsI: []InputPort{{Name: "a", Start: 0, Width: 3}, {Name: "b", Start: 3, Width: 3}},
				PortsO: []OutputPort{{Name: "y", Value: CellValue(1, 0, 3)}},
			},
			&Operator{
				CellCommon: CellCommon{Src: &SrcLoc{File: "top.py", Line: 5}},
				Op:         OpAdd,
				Inputs:     []Value{CellValue(0, 0, 3), CellValue(0, 3, 3)},
				Width:      3,
			},
			&Memory{Depth: 2, Width: 4},
			&SyncWritePort{Memory: 2},
			&AsyncReadPort{Memory: 2, Width: 4},
			&Instance{Type: "box", PortsO: []InstanceOutput{{Name: "a", Start: 0, Width: 2}, {Name: "b", Start: 2, Width: 3}}},
			&IOBuffer{Port: PortValue(0, 1), O: Value{ConstNet(1)}, OE: ConstNet(1)},
		},
	}
}

func TestOutputWidth(t *testing.T) {
	nl := sampleNetlist()
	want := []int{6, 3, 0, 0, 4, 5, 1}
	for i, w := range want {
		if got := nl.OutputWidth(i); got != w {
			t.Fatalf("OutputWidth(%d) [%s] = %d, want %d", i, KindName(nl.Cells[i]), got, w)
		}
	}
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	Dump(sampleNetlist(), &buf)
	out := buf.String()
	for _, want := range []string{
		"io ports:",
		"led",
		"modules:",
		"src=top.py:2",
		"sum      = [@1+2 @1+1 @1+0]",
		"cells:",
		"+/3 ([@0+2 @0+1 @0+0], [@0+5 @0+4 @0+3]) (top.py:5)",
		"2x4, 0 init words",
		"box (0 params, 0 in, 2 out, 0 io)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("dump is missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	Dump(nil, &buf)
	if got := buf.String(); got != "<nil netlist>\n" {
		t.Fatalf("unexpected nil dump %q", got)
	}
}

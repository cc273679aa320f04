package textir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReserveAdvancesByWidth(t *testing.T) {
	var a slotAllocator
	require.Equal(t, 0, a.reserve(4))
	require.Equal(t, 4, a.reserve(0))
	require.Equal(t, 5, a.reserve(1))
	require.Equal(t, 6, a.reserve(3))
	require.Equal(t, 9, a.next)

	require.Equal(t, 4, a.width(0))
	require.Equal(t, 0, a.width(4))
	require.Panics(t, func() { a.width(2) }, "covered id must not be a slot")
	require.Panics(t, func() { a.width(42) })
}

func TestRenderTiers(t *testing.T) {
	var a slotAllocator
	wide := a.reserve(4)
	bit := a.reserve(1)

	require.Equal(t, "[]", a.render(nil))
	require.Equal(t, "0110", a.render([]operand{literal(0), literal(1), literal(1), literal(0)}))
	require.Equal(t, "%0:4", a.render(a.output(wide)))
	require.Equal(t, "%4", a.render(a.output(bit)))
	require.Equal(t, "%0+2", a.render([]operand{{slot: wide, bit: 2}}))

	// A prefix of a slot is not its full output.
	require.Equal(t, "[ %0+1 %0+0 ]", a.render(a.output(wide)[:2]))
	require.Equal(t, "[ 1 %4+0 %0+3 ]", a.render([]operand{{slot: wide, bit: 3}, {slot: bit, bit: 0}, literal(1)}))
}

func TestRenderPrefersFullOutputOverBits(t *testing.T) {
	var a slotAllocator
	a.reserve(2)
	id := a.reserve(8)
	out := a.output(id)
	require.True(t, a.isFullOutput(out))
	require.Equal(t, "%2:8", a.render(out))

	reversed := make([]operand, len(out))
	for i := range out {
		reversed[i] = out[len(out)-1-i]
	}
	require.False(t, a.isFullOutput(reversed))
}

func TestBlockWriterIndentation(t *testing.T) {
	var w blockWriter
	w.line("a")
	w.open("b")
	w.line("c")
	w.open("d")
	w.close()
	w.close()
	require.Equal(t, "a\nb {\n  c\n  d {\n  }\n}\n", w.String())
	require.Panics(t, func() { w.close() })
}

package textir

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"netir/internal/netlist"
)

func recordingInterner() (*interner, *[]string) {
	var records []string
	in := newInterner(func(id int, record string) {
		records = append(records, fmt.Sprintf("!%d = %s", id, record))
	})
	return in, &records
}

func TestInternDeduplicatesByContent(t *testing.T) {
	in, records := recordingInterner()

	src := in.sourceLoc("top.py", 3)
	require.Equal(t, src, in.sourceLoc("top.py", 3))
	require.NotEqual(t, src, in.sourceLoc("top.py", 4))
	require.NotEqual(t, src, in.sourceLoc("sub.py", 3))

	root := in.scope([]string{"top"}, -1, src)
	require.Equal(t, root, in.scope([]string{"top"}, -1, src))
	child := in.scope([]string{"top", "sub"}, root, -1)
	require.Equal(t, child, in.scope([]string{"top", "sub"}, root, -1))

	id := in.ident("x", child)
	require.Equal(t, id, in.ident("x", child))
	require.NotEqual(t, id, in.ident("x", root))

	require.Equal(t, 7, in.Len())
	require.Equal(t, []string{
		`!0 = source "top.py" #3`,
		`!1 = source "top.py" #4`,
		`!2 = source "sub.py" #3`,
		`!3 = scope "top" src=!0`,
		`!4 = scope "sub" in=!3`,
		`!5 = ident "x" in=!4`,
		`!6 = ident "x" in=!3`,
	}, *records)
}

func TestScopeKeepsDistinctPaths(t *testing.T) {
	in, records := recordingInterner()

	a := in.scope([]string{"a", "x"}, -1, -1)
	b := in.scope([]string{"b", "x"}, -1, -1)
	require.NotEqual(t, a, b)
	require.Equal(t, a, in.scope([]string{"a", "x"}, -1, -1))
	require.Equal(t, []string{
		`!0 = scope "x"`,
		`!1 = scope "x"`,
	}, *records)
}

func TestMerge(t *testing.T) {
	in, records := recordingInterner()
	a := in.sourceLoc("a.py", 1)
	b := in.sourceLoc("b.py", 2)
	c := in.sourceLoc("c.py", 3)

	require.Equal(t, -1, in.merge())
	require.Equal(t, -1, in.merge(-1, -1))
	require.Equal(t, b, in.merge(b))
	require.Equal(t, b, in.merge(-1, b, b))

	set := in.merge(c, a)
	require.Equal(t, set, in.merge(a, c))
	require.Equal(t, set, in.merge(a, -1, c, a))
	require.NotEqual(t, set, in.merge(a, b, c))

	require.Equal(t, 5, in.Len())
	require.Equal(t, "!3 = { !0 !2 }", (*records)[3])
	require.Equal(t, "!4 = { !0 !1 !2 }", (*records)[4])
}

func TestAttrValues(t *testing.T) {
	in, records := recordingInterner()

	id, err := in.attr("keep", 1)
	require.NoError(t, err)
	again, err := in.attr("keep", 1)
	require.NoError(t, err)
	require.Equal(t, id, again)

	_, err = in.attr("init", netlist.NewConst(5, 4))
	require.NoError(t, err)
	_, err = in.attr("note", "hello world")
	require.NoError(t, err)
	_, err = in.attr("neg", int64(-3))
	require.NoError(t, err)

	_, err = in.attr("bad", 1.5)
	require.ErrorIs(t, err, ErrUnsupportedValue)

	require.Equal(t, []string{
		`!0 = attr "keep" #1`,
		`!1 = attr "init" 0101`,
		`!2 = attr "note" "hello world"`,
		`!3 = attr "neg" #-3`,
	}, *records)
}

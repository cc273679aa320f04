package textir

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"netir/internal/netlist"
)

type metaKind int

const (
	metaSource metaKind = iota
	metaScope
	metaIdent
	metaAttr
	metaSet
)

// metaKey is the content of a metadata record; equal keys intern to the same id.
type metaKey struct {
	kind metaKind
	name string
	// text is the file of a source record, the quoted path of a scope, the
	// rendered value of an attribute or the sorted member list of a merged set.
	text string
	a, b int
}

// interner deduplicates metadata records by content. New records are passed
// to emit as soon as they are created so they precede their first use.
type interner struct {
	ids  map[metaKey]int
	emit func(id int, record string)
}

func newInterner(emit func(id int, record string)) *interner {
	return &interner{
		ids:  make(map[metaKey]int),
		emit: emit,
	}
}

// Len returns the number of distinct records.
func (in *interner) Len() int {
	return len(in.ids)
}

func (in *interner) intern(key metaKey, render func() string) int {
	if id, ok := in.ids[key]; ok {
		return id
	}
	id := len(in.ids)
	in.ids[key] = id
	if in.emit != nil {
		in.emit(id, render())
	}
	return id
}

func (in *interner) sourceLoc(file string, line int) int {
	key := metaKey{kind: metaSource, text: file, a: line}
	return in.intern(key, func() string {
		return fmt.Sprintf("source %s #%d", Escape(file), line)
	})
}

// scope interns a hierarchy scope named by the last element of path; parent
// and src are -1 when absent. Scopes with different paths stay distinct.
func (in *interner) scope(path []string, parent, src int) int {
	name := ""
	if len(path) > 0 {
		name = path[len(path)-1]
	}
	quoted := make([]string, len(path))
	for i, elem := range path {
		quoted[i] = Escape(elem)
	}
	key := metaKey{kind: metaScope, name: name, text: strings.Join(quoted, " "), a: parent, b: src}
	return in.intern(key, func() string {
		var b strings.Builder
		b.WriteString("scope ")
		b.WriteString(Escape(name))
		if parent >= 0 {
			fmt.Fprintf(&b, " in=!%d", parent)
		}
		if src >= 0 {
			fmt.Fprintf(&b, " src=!%d", src)
		}
		return b.String()
	})
}

func (in *interner) ident(name string, scope int) int {
	key := metaKey{kind: metaIdent, name: name, a: scope}
	return in.intern(key, func() string {
		if scope < 0 {
			return "ident " + Escape(name)
		}
		return fmt.Sprintf("ident %s in=!%d", Escape(name), scope)
	})
}

func (in *interner) attr(name string, value any) (int, error) {
	text, err := literalValue(value)
	if err != nil {
		return -1, fmt.Errorf("attribute %s: %w", name, err)
	}
	key := metaKey{kind: metaAttr, name: name, text: text}
	return in.intern(key, func() string {
		return fmt.Sprintf("attr %s %s", Escape(name), text)
	}), nil
}

// merge combines metadata ids into one. A single id is returned unchanged;
// negative ids are ignored and an empty set yields -1.
func (in *interner) merge(ids ...int) int {
	set := make([]int, 0, len(ids))
	for _, id := range ids {
		if id >= 0 {
			set = append(set, id)
		}
	}
	slices.Sort(set)
	set = slices.Compact(set)
	switch len(set) {
	case 0:
		return -1
	case 1:
		return set[0]
	}
	members := make([]string, len(set))
	for i, id := range set {
		members[i] = "!" + strconv.Itoa(id)
	}
	key := metaKey{kind: metaSet, text: strings.Join(members, " ")}
	return in.intern(key, func() string {
		return "{ " + key.text + " }"
	})
}

// literalValue renders an instance parameter or attribute value.
func literalValue(value any) (string, error) {
	switch v := value.(type) {
	case int:
		return "#" + strconv.Itoa(v), nil
	case int64:
		return "#" + strconv.FormatInt(v, 10), nil
	case netlist.Const:
		return v.Binary(), nil
	case string:
		return Escape(v), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}
}

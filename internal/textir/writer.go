package textir

import "strings"

// blockWriter accumulates output lines and keeps block indentation and
// closing braces paired.
type blockWriter struct {
	b     strings.Builder
	depth int
}

func (w *blockWriter) line(text string) {
	for i := 0; i < w.depth; i++ {
		w.b.WriteString("  ")
	}
	w.b.WriteString(text)
	w.b.WriteByte('\n')
}

// open writes header followed by " {" and indents subsequent lines.
func (w *blockWriter) open(header string) {
	w.line(header + " {")
	w.depth++
}

func (w *blockWriter) close() {
	if w.depth == 0 {
		panic("textir: close without matching open")
	}
	w.depth--
	w.line("}")
}

func (w *blockWriter) String() string {
	return w.b.String()
}

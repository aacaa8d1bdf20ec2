package render

import (
	"fmt"
	"strconv"
	"strings"

	"navtree/nav"
)

// treeWriter accumulates indented lines.
type treeWriter struct {
	w *strings.Builder
}

func newTreeWriter() *treeWriter {
	return &treeWriter{w: &strings.Builder{}}
}

func (tw treeWriter) String() string {
	return tw.w.String()
}

func (tw treeWriter) line(depth int, format string, args ...any) {
	for range depth {
		tw.w.WriteString("  ")
	}
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Tree returns human readable outline of the table, one line per entry.
func Tree(t *nav.Table) string {
	tw := newTreeWriter()
	entries := t.Entries()
	tw.line(0, "table %s: %d entries, depth %d", strconv.Quote(t.Name()), nav.Count(entries), nav.MaxDepth(entries))
	_ = nav.Walk(entries, func(path []int, e nav.Entry) error {
		var b strings.Builder
		b.WriteString(strconv.Quote(e.Title))
		if e.Target.IsSet() {
			b.WriteString(" -> ")
			b.WriteString(strconv.Quote(e.Target.String()))
		}
		switch e.Children.Kind() {
		case nav.ChildrenRef:
			b.WriteString(" => ")
			b.WriteString(e.Children.Ref())
		case nav.ChildrenInline:
			if e.Children.Len() == 0 {
				b.WriteString(" []")
			}
		}
		tw.line(len(path), "%d. %s", path[len(path)-1]+1, b.String())
		return nil
	})
	return tw.String()
}

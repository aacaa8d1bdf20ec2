package nav

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

const (
	topIndent  = 4
	nestIndent = 2
)

// Marshal writes table as javascript in the layout Doxygen uses, so that
// Parse(Marshal(t)) is equal to t and untouched tables come out byte for byte.
// Table name must be an identifier, see IsIdentifier.
func Marshal(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write is Marshal to a stream.
func Write(w io.Writer, t *Table) error {
	if len(t.name) > 0 && !IsIdentifier(t.name) {
		return &MalformedDataError{Reason: fmt.Sprintf("table name %q is not a javascript identifier", t.name)}
	}

	var b strings.Builder
	if len(t.name) > 0 {
		b.WriteString("var ")
		b.WriteString(t.name)
		b.WriteString(" =\n")
	}
	b.WriteString("[\n")
	writeEntries(&b, t.entries, topIndent)
	b.WriteString("]")
	if len(t.name) > 0 {
		b.WriteString(";")
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeEntries(b *strings.Builder, entries []Entry, indent int) {
	pad := strings.Repeat(" ", indent)
	for i, e := range entries {
		b.WriteString(pad)
		b.WriteString("[ ")
		b.WriteString(quote(e.Title))
		b.WriteString(", ")
		if e.Target.IsSet() {
			b.WriteString(quote(e.Target.String()))
		} else {
			b.WriteString("null")
		}
		b.WriteString(", ")
		switch e.Children.kind {
		case ChildrenNone:
			b.WriteString("null")
		case ChildrenRef:
			b.WriteString(quote(e.Children.ref))
		case ChildrenInline:
			if len(e.Children.entries) == 0 {
				b.WriteString("[ ]")
				break
			}
			b.WriteString("[\n")
			writeEntries(b, e.Children.entries, indent+nestIndent)
			b.WriteString(pad)
			b.WriteString("]")
		}
		b.WriteString(" ]")
		if i < len(entries)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
}

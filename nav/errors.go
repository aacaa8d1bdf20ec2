package nav

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedData is matched by every error caused by data which does not
// form a navigation table.
var ErrMalformedData = errors.New("malformed navigation data")

// MalformedDataError describes where table data went wrong. Line and Col are
// 1 based and zero when position is unknown. Path is the index path of the
// offending entry, empty for problems outside of entries.
type MalformedDataError struct {
	Source string
	Line   int
	Col    int
	Path   []int
	Reason string
	Err    error
}

func (e *MalformedDataError) Error() string {
	var b strings.Builder
	b.WriteString(ErrMalformedData.Error())
	if len(e.Source) > 0 || e.Line > 0 {
		b.WriteString(" in ")
		if len(e.Source) > 0 {
			b.WriteString(e.Source)
		} else {
			b.WriteString("input")
		}
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d:%d", e.Line, e.Col)
		}
	}
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " at entry %v", e.Path)
	}
	if len(e.Reason) > 0 {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *MalformedDataError) Is(target error) bool {
	return target == ErrMalformedData
}

func (e *MalformedDataError) Unwrap() error {
	return e.Err
}

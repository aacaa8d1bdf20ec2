package nav

import (
	"errors"
	"slices"
	"strings"
)

// SkipChildren returned by WalkFunc prevents descending into inline children
// of the current entry.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every entry, path is the index path of the entry
// (its length is entry depth) and may be retained.
type WalkFunc func(path []int, e Entry) error

// Walk visits entries depth first in authored order. Referenced tables are
// not followed, see library package for that.
func Walk(entries []Entry, fn WalkFunc) error {
	return walk(entries, nil, fn)
}

func walk(entries []Entry, parent []int, fn WalkFunc) error {
	for i, e := range entries {
		path := append(slices.Clone(parent), i)
		if err := fn(path, e); err != nil {
			if errors.Is(err, SkipChildren) {
				continue
			}
			return err
		}
		if e.Children.kind != ChildrenInline {
			continue
		}
		if err := walk(e.Children.entries, path, fn); err != nil {
			return err
		}
	}
	return nil
}

// Count returns number of entries at all levels.
func Count(entries []Entry) int {
	n := 0
	_ = Walk(entries, func([]int, Entry) error {
		n++
		return nil
	})
	return n
}

// MaxDepth returns number of levels, 0 for empty list and 1 for flat one.
func MaxDepth(entries []Entry) int {
	depth := 0
	_ = Walk(entries, func(path []int, _ Entry) error {
		depth = max(depth, len(path))
		return nil
	})
	return depth
}

// checkTitles catches entries decoders could leave without title.
func checkTitles(entries []Entry, source string) error {
	return Walk(entries, func(path []int, e Entry) error {
		if len(strings.TrimSpace(e.Title)) == 0 {
			return &MalformedDataError{Source: source, Path: path, Reason: "title must be non-empty string"}
		}
		return nil
	})
}

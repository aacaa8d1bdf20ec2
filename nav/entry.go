// Package nav holds navigation tree tables: ordered lists of title, target and
// children triples a documentation renderer walks to draw a table of contents.
//
// Tables are immutable once constructed. Accessors hand out copies, so the
// same table may be read from any number of goroutines.
package nav

import (
	"slices"
	"strings"
)

// Target is a navigation destination: a page, optionally followed by "#" and
// an anchor. The zero value means the entry has no destination.
type Target struct {
	raw string
	set bool
}

// NoTarget returns target of a pure grouping entry.
func NoTarget() Target {
	return Target{}
}

// NewTarget returns target pointing to s. Content of s is not validated.
func NewTarget(s string) Target {
	return Target{raw: s, set: true}
}

// IsSet reports whether entry has a destination at all.
func (t Target) IsSet() bool {
	return t.set
}

// String returns target exactly as authored, empty for absent target.
func (t Target) String() string {
	return t.raw
}

// Page returns part of the target before the first "#".
func (t Target) Page() string {
	page, _, _ := strings.Cut(t.raw, "#")
	return page
}

// Anchor returns part of the target after the first "#" and whether target
// has "#" at all.
func (t Target) Anchor() (string, bool) {
	_, anchor, found := strings.Cut(t.raw, "#")
	return anchor, found
}

// ChildKind tells how children of an entry are represented.
type ChildKind int

const (
	// ChildrenNone is a leaf, authored as null.
	ChildrenNone ChildKind = iota
	// ChildrenInline is a nested list, possibly empty.
	ChildrenInline
	// ChildrenRef names another table holding the children.
	ChildrenRef
)

func (k ChildKind) String() string {
	switch k {
	case ChildrenNone:
		return "none"
	case ChildrenInline:
		return "inline"
	case ChildrenRef:
		return "ref"
	}
	return "unknown"
}

// Children of an entry. The zero value is a leaf.
type Children struct {
	kind    ChildKind
	entries []Entry
	ref     string
}

// Leaf returns children of an entry without submenu.
func Leaf() Children {
	return Children{}
}

// Inline returns nested list of entries. Inline() with no arguments is an
// empty list, which is kept distinct from Leaf().
func Inline(entries ...Entry) Children {
	return Children{kind: ChildrenInline, entries: append(make([]Entry, 0, len(entries)), entries...)}
}

// Ref returns children stored in another table with the given name.
func Ref(name string) Children {
	return Children{kind: ChildrenRef, ref: name}
}

func (c Children) Kind() ChildKind {
	return c.kind
}

// Entries returns copy of inline children, nil for other kinds.
func (c Children) Entries() []Entry {
	if c.kind != ChildrenInline {
		return nil
	}
	return slices.Clone(c.entries)
}

// Len returns number of inline children.
func (c Children) Len() int {
	return len(c.entries)
}

// Ref returns name of referenced table, empty unless kind is ChildrenRef.
func (c Children) Ref() string {
	return c.ref
}

// IsLeaf reports whether there is nothing below the entry: null children or
// empty inline list.
func (c Children) IsLeaf() bool {
	return c.kind == ChildrenNone || (c.kind == ChildrenInline && len(c.entries) == 0)
}

func (c Children) equal(o Children) bool {
	if c.kind != o.kind || c.ref != o.ref || len(c.entries) != len(o.entries) {
		return false
	}
	for i := range c.entries {
		if !c.entries[i].Equal(o.entries[i]) {
			return false
		}
	}
	return true
}

// Entry is a single node of the navigation tree.
type Entry struct {
	Title    string
	Target   Target
	Children Children
}

// NewEntry is a shortcut for composing literal trees.
func NewEntry(title string, target Target, children Children) Entry {
	return Entry{Title: title, Target: target, Children: children}
}

// Equal reports value equality including children representation.
func (e Entry) Equal(o Entry) bool {
	return e.Title == o.Title && e.Target == o.Target && e.Children.equal(o.Children)
}

// Table is an ordered top level list of entries for one documentation page.
type Table struct {
	name    string
	entries []Entry
}

// NewTable creates table. Name is the script variable holding it and may be
// empty for bare literals.
func NewTable(name string, entries ...Entry) *Table {
	return &Table{name: name, entries: append(make([]Entry, 0, len(entries)), entries...)}
}

func (t *Table) Name() string {
	return t.name
}

// Entries returns copy of the top level entries.
func (t *Table) Entries() []Entry {
	return slices.Clone(t.entries)
}

func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup returns entry by index path: Lookup(5, 1) is the second child of the
// sixth top level entry.
func (t *Table) Lookup(path ...int) (Entry, bool) {
	if len(path) == 0 {
		return Entry{}, false
	}
	entries := t.entries
	var e Entry
	for _, i := range path {
		if i < 0 || i >= len(entries) {
			return Entry{}, false
		}
		e = entries[i]
		entries = e.Children.entries
	}
	return e, true
}

// Equal reports whether both tables have the same name and equal entries.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.name != o.name || len(t.entries) != len(o.entries) {
		return false
	}
	for i := range t.entries {
		if !t.entries[i].Equal(o.entries[i]) {
			return false
		}
	}
	return true
}

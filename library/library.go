// Package library keeps named navigation tables together and follows by-name
// child references between them.
package library

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"navtree/nav"
)

var (
	// ErrUnresolved means child reference names table which is not in the library.
	ErrUnresolved = errors.New("unresolved table reference")
	// ErrCycle means following references leads back to a table already being expanded.
	ErrCycle = errors.New("table reference cycle")
	// ErrDuplicate means table with the same name was already added.
	ErrDuplicate = errors.New("duplicate table name")
)

// Option configures library.
type Option func(*Library)

// WithLenient keeps unresolved references in place instead of failing.
func WithLenient(lenient bool) Option {
	return func(l *Library) {
		l.lenient = lenient
	}
}

// Library is a set of tables addressed by name. It is safe for concurrent use.
type Library struct {
	log     *zap.Logger
	lenient bool

	mu     sync.RWMutex
	tables map[string]*nav.Table
	origin map[string]string
}

func New(log *zap.Logger, opts ...Option) *Library {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Library{
		log:    log.Named("library"),
		tables: make(map[string]*nav.Table),
		origin: make(map[string]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add puts table into library. Origin describes where table came from and is
// only used in messages.
func (l *Library) Add(t *nav.Table, origin string) error {
	if t == nil {
		return errors.New("nil table")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.origin[t.Name()]; ok {
		return fmt.Errorf("table %q from %s: %w (already loaded from %s)", t.Name(), origin, ErrDuplicate, prev)
	}
	l.tables[t.Name()] = t
	l.origin[t.Name()] = origin
	l.log.Debug("Table added", zap.String("name", t.Name()), zap.String("origin", origin), zap.Int("entries", t.Len()))
	return nil
}

// Table returns table by name.
func (l *Library) Table(name string) (*nav.Table, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	t, ok := l.tables[name]
	return t, ok
}

// Origin returns where named table was loaded from.
func (l *Library) Origin(name string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.origin[name]
}

func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.tables)
}

// Names returns names of all tables in natural order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.tables))
	for name := range l.tables {
		names = append(names, name)
	}
	slices.SortFunc(names, compareNames)
	return names
}

func compareNames(a, b string) int {
	switch {
	case a == b:
		return 0
	case natural.Less(a, b):
		return -1
	}
	return 1
}

// References returns names referenced from the table at any depth, in order
// of appearance and without duplicates.
func References(t *nav.Table) []string {
	var refs []string
	_ = nav.Walk(t.Entries(), func(_ []int, e nav.Entry) error {
		if e.Children.Kind() == nav.ChildrenRef && !slices.Contains(refs, e.Children.Ref()) {
			refs = append(refs, e.Children.Ref())
		}
		return nil
	})
	return refs
}

// Roots returns tables no other table refers to, in natural order. Tables
// referring only to themselves are roots too.
func (l *Library) Roots() []*nav.Table {
	names := l.Names()

	referenced := make(map[string]bool)
	for _, name := range names {
		t, _ := l.Table(name)
		for _, ref := range References(t) {
			if ref != name {
				referenced[ref] = true
			}
		}
	}

	roots := make([]*nav.Table, 0, len(names))
	for _, name := range names {
		if !referenced[name] {
			t, _ := l.Table(name)
			roots = append(roots, t)
		}
	}
	return roots
}

// Resolve returns copy of named table with every reference replaced by the
// entries of referenced table, recursively. Entry keeps its title and target,
// only children change. Referenced table with no entries turns into empty
// inline list.
func (l *Library) Resolve(name string) (*nav.Table, error) {
	t, ok := l.Table(name)
	if !ok {
		return nil, fmt.Errorf("table %q: %w", name, ErrUnresolved)
	}
	entries, err := l.resolve(t.Entries(), []string{name})
	if err != nil {
		return nil, fmt.Errorf("unable to resolve table %q: %w", name, err)
	}
	return nav.NewTable(name, entries...), nil
}

func (l *Library) resolve(entries []nav.Entry, chain []string) ([]nav.Entry, error) {
	out := make([]nav.Entry, 0, len(entries))
	for _, e := range entries {
		switch e.Children.Kind() {
		case nav.ChildrenInline:
			children, err := l.resolve(e.Children.Entries(), chain)
			if err != nil {
				return nil, err
			}
			e.Children = nav.Inline(children...)
		case nav.ChildrenRef:
			ref := e.Children.Ref()
			if slices.Contains(chain, ref) {
				return nil, fmt.Errorf("%s -> %s: %w", strings.Join(chain, " -> "), ref, ErrCycle)
			}
			t, ok := l.Table(ref)
			if !ok {
				if !l.lenient {
					return nil, fmt.Errorf("entry %q refers to %q: %w", e.Title, ref, ErrUnresolved)
				}
				l.log.Warn("Unresolved reference kept", zap.String("entry", e.Title), zap.String("ref", ref), zap.Strings("chain", chain))
				break
			}
			children, err := l.resolve(t.Entries(), append(slices.Clone(chain), ref))
			if err != nil {
				return nil, err
			}
			e.Children = nav.Inline(children...)
		}
		out = append(out, e)
	}
	return out, nil
}

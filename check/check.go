// Package check validates navigation tables beyond what is needed to load
// them: destinations, references between tables and tree shape.
package check

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"go.uber.org/multierr"

	"navtree/config"
	"navtree/library"
	"navtree/nav"
)

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Problem is a single finding. Path is empty for problems of a table as a
// whole.
type Problem struct {
	Severity Severity
	Table    string
	Path     []int
	Title    string
	Msg      string
}

func (p *Problem) Error() string {
	if len(p.Path) == 0 {
		return fmt.Sprintf("table %q: %s", p.Table, p.Msg)
	}
	return fmt.Sprintf("table %q entry %v (%q): %s", p.Table, p.Path, p.Title, p.Msg)
}

// Options select optional checks.
type Options struct {
	// MaxDepth limits inline nesting of a table, 0 means unlimited.
	MaxDepth int
	// Anchors checks anchors are usable as fragment identifiers.
	Anchors bool
	// DuplicateTargets reports siblings pointing to the same place.
	DuplicateTargets bool
	// Lenient downgrades unresolved references to warnings.
	Lenient bool
}

func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxDepth:         cfg.Check.MaxDepth,
		Anchors:          cfg.Check.Anchors,
		DuplicateTargets: cfg.Check.DuplicateTargets,
		Lenient:          cfg.Document.LenientReferences,
	}
}

// Doxygen generates anchors from identifiers, labels and hashes.
var anchorRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.:-]*$`)

// Library checks every table in natural name order. Warnings are returned
// as they are, problems of error severity are combined into err.
func Library(lib *library.Library, opts Options) (warnings []*Problem, err error) {
	var problems []*Problem
	for _, name := range lib.Names() {
		t, _ := lib.Table(name)
		problems = append(problems, Table(t, opts)...)
		problems = append(problems, references(lib, t, opts)...)
	}
	problems = append(problems, cycles(lib)...)

	for _, p := range problems {
		if p.Severity == SeverityError {
			err = multierr.Append(err, p)
			continue
		}
		warnings = append(warnings, p)
	}
	return warnings, err
}

// Table runs checks which do not need other tables.
func Table(t *nav.Table, opts Options) []*Problem {
	var problems []*Problem
	report := func(sev Severity, path []int, e nav.Entry, format string, args ...any) {
		problems = append(problems, &Problem{Severity: sev, Table: t.Name(), Path: path, Title: e.Title, Msg: fmt.Sprintf(format, args...)})
	}

	if t.Len() == 0 {
		problems = append(problems, &Problem{Severity: SeverityWarning, Table: t.Name(), Msg: "table is empty"})
	}

	_ = nav.Walk(t.Entries(), func(path []int, e nav.Entry) error {
		if e.Title != strings.TrimSpace(e.Title) {
			report(SeverityWarning, path, e, "title has leading or trailing spaces")
		}
		checkTarget(e, opts, func(sev Severity, format string, args ...any) {
			report(sev, path, e, format, args...)
		})
		if opts.DuplicateTargets && e.Children.Kind() == nav.ChildrenInline {
			for _, dup := range duplicateTargets(e.Children.Entries()) {
				report(SeverityWarning, path, e, "several children point to %q", dup)
			}
		}
		if opts.MaxDepth > 0 && len(path) > opts.MaxDepth {
			report(SeverityError, path, e, "nesting depth exceeds %d", opts.MaxDepth)
			return nav.SkipChildren
		}
		return nil
	})
	if opts.DuplicateTargets {
		for _, dup := range duplicateTargets(t.Entries()) {
			problems = append(problems, &Problem{Severity: SeverityWarning, Table: t.Name(), Msg: fmt.Sprintf("several top level entries point to %q", dup)})
		}
	}
	return problems
}

func checkTarget(e nav.Entry, opts Options, report func(Severity, string, ...any)) {
	if !e.Target.IsSet() {
		if e.Children.IsLeaf() {
			report(SeverityWarning, "entry leads nowhere: no target and no children")
		}
		return
	}
	if len(e.Target.String()) == 0 {
		report(SeverityError, "target is empty string, use null for entries without page")
		return
	}

	page := e.Target.Page()
	if strings.ContainsFunc(page, unicode.IsSpace) {
		report(SeverityError, "page %q contains white space", page)
	}

	anchor, hasAnchor := e.Target.Anchor()
	switch {
	case !hasAnchor:
	case len(page) == 0 && len(anchor) == 0:
		report(SeverityError, "target %q has neither page nor anchor", e.Target.String())
	case len(anchor) == 0:
		report(SeverityWarning, "target %q has empty anchor", e.Target.String())
	case len(page) == 0:
		report(SeverityWarning, "target %q has no page", e.Target.String())
		fallthrough
	default:
		if opts.Anchors && !anchorRe.MatchString(anchor) {
			report(SeverityError, "anchor %q is not a valid fragment identifier", anchor)
		}
	}
}

// duplicateTargets returns targets used more than once in the list.
func duplicateTargets(entries []nav.Entry) []string {
	seen := make(map[string]int, len(entries))
	var dups []string
	for _, e := range entries {
		if !e.Target.IsSet() || len(e.Target.String()) == 0 {
			continue
		}
		seen[e.Target.String()]++
		if seen[e.Target.String()] == 2 {
			dups = append(dups, e.Target.String())
		}
	}
	return dups
}

// references reports child references to tables missing from the library.
func references(lib *library.Library, t *nav.Table, opts Options) []*Problem {
	sev := SeverityError
	if opts.Lenient {
		sev = SeverityWarning
	}
	var problems []*Problem
	_ = nav.Walk(t.Entries(), func(path []int, e nav.Entry) error {
		if e.Children.Kind() != nav.ChildrenRef {
			return nil
		}
		if _, ok := lib.Table(e.Children.Ref()); !ok {
			problems = append(problems, &Problem{
				Severity: sev, Table: t.Name(), Path: path, Title: e.Title,
				Msg: fmt.Sprintf("children refer to unknown table %q", e.Children.Ref()),
			})
		}
		return nil
	})
	return problems
}

// cycles finds reference loops between tables, each loop is reported once
// for the table it was entered from first.
func cycles(lib *library.Library) []*Problem {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int)
	var (
		problems []*Problem
		chain    []string
		visit    func(name string)
	)
	visit = func(name string) {
		state[name] = inProgress
		chain = append(chain, name)
		t, _ := lib.Table(name)
		for _, ref := range library.References(t) {
			if _, ok := lib.Table(ref); !ok {
				continue
			}
			switch state[ref] {
			case unvisited:
				visit(ref)
			case inProgress:
				loop := append(slices.Clone(chain[slices.Index(chain, ref):]), ref)
				problems = append(problems, &Problem{
					Severity: SeverityError, Table: ref,
					Msg: "reference cycle " + strings.Join(loop, " -> "),
				})
			}
		}
		chain = chain[:len(chain)-1]
		state[name] = done
	}
	for _, name := range lib.Names() {
		if state[name] == unvisited {
			visit(name)
		}
	}
	return problems
}

package nav

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

type entryYAML struct {
	Title    string  `yaml:"title"`
	Target   *string `yaml:"target"`
	Children any     `yaml:"children"`
}

// MarshalYAML uses the same shape as JSON form.
func (e Entry) MarshalYAML() (any, error) {
	out := entryYAML{Title: e.Title}
	if e.Target.IsSet() {
		s := e.Target.String()
		out.Target = &s
	}
	switch e.Children.kind {
	case ChildrenInline:
		out.Children = nonNil(e.Children.entries)
	case ChildrenRef:
		out.Children = e.Children.ref
	}
	return out, nil
}

func yamlError(node *yaml.Node, format string, args ...any) error {
	return &MalformedDataError{Line: node.Line, Col: node.Column, Reason: fmt.Sprintf(format, args...)}
}

func isYAMLNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

// isYAMLString rejects numbers, booleans and other scalars resolved to
// non-string tags, quote them to use as text.
func isYAMLString(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!str"
}

func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return yamlError(node, "entry must be a mapping")
	}

	var (
		out       Entry
		haveTitle bool
	)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "title":
			if !isYAMLString(val) || len(strings.TrimSpace(val.Value)) == 0 {
				return yamlError(val, "title must be non-empty string")
			}
			out.Title, haveTitle = val.Value, true
		case "target":
			switch {
			case isYAMLNull(val):
			case isYAMLString(val):
				out.Target = NewTarget(val.Value)
			default:
				return yamlError(val, "target must be string or null")
			}
		case "children":
			switch {
			case isYAMLNull(val):
			case isYAMLString(val) && len(val.Value) > 0:
				out.Children = Ref(val.Value)
			case val.Kind == yaml.SequenceNode:
				list := make([]Entry, 0, len(val.Content))
				for _, item := range val.Content {
					var child Entry
					if err := item.Decode(&child); err != nil {
						return err
					}
					list = append(list, child)
				}
				out.Children = Children{kind: ChildrenInline, entries: list}
			default:
				return yamlError(val, "children must be list, reference or null")
			}
		default:
			return yamlError(key, "unknown entry field %q", key.Value)
		}
	}
	if !haveTitle {
		return yamlError(node, "entry has no title")
	}

	*e = out
	return nil
}

type tableYAML struct {
	Name    string  `yaml:"name"`
	Entries []Entry `yaml:"entries"`
}

func (t *Table) MarshalYAML() (any, error) {
	return tableYAML{Name: t.name, Entries: nonNil(t.entries)}, nil
}

// EncodeYAML writes table document.
func EncodeYAML(w io.Writer, t *Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tableYAML{Name: t.name, Entries: nonNil(t.entries)}); err != nil {
		return err
	}
	return enc.Close()
}

// DecodeYAML reads table document, unknown fields are not allowed.
func DecodeYAML(data []byte, source string) (*Table, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc tableYAML
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &MalformedDataError{Source: source, Reason: "no table found"}
		}
		return nil, withSource(err, source)
	}
	if err := checkName(doc.Name, source); err != nil {
		return nil, err
	}
	if err := checkTitles(doc.Entries, source); err != nil {
		return nil, err
	}
	return &Table{name: doc.Name, entries: nonNil(doc.Entries)}, nil
}

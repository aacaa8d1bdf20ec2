package nav

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed data/navtree.schema.json
var schemaJSON string

// Schema returns JSON schema of the table document.
func Schema() []byte {
	return []byte(schemaJSON)
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("navtree.schema.json", schemaJSON)
})

type entryJSON struct {
	Title    string  `json:"title"`
	Target   *string `json:"target"`
	Children any     `json:"children"`
}

// MarshalJSON writes entry as {"title": ..., "target": ..., "children": ...}
// where absent target and leaf children are null and reference is a string.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{Title: e.Title}
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
	return json.Marshal(out)
}

// UnmarshalJSON applies the same rules as javascript parser. Missing target
// and children mean null.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title    *string         `json:"title"`
		Target   json.RawMessage `json:"target"`
		Children json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return &MalformedDataError{Reason: "entry must be an object", Err: err}
	}
	if raw.Title == nil || len(strings.TrimSpace(*raw.Title)) == 0 {
		return &MalformedDataError{Reason: "title must be non-empty string"}
	}
	out := Entry{Title: *raw.Title}

	if !isJSONNull(raw.Target) {
		var target string
		if err := json.Unmarshal(raw.Target, &target); err != nil {
			return &MalformedDataError{Reason: fmt.Sprintf("target of %q must be string or null", out.Title), Err: err}
		}
		out.Target = NewTarget(target)
	}

	if !isJSONNull(raw.Children) {
		switch bytes.TrimSpace(raw.Children)[0] {
		case '"':
			var ref string
			if err := json.Unmarshal(raw.Children, &ref); err != nil || len(ref) == 0 {
				return &MalformedDataError{Reason: fmt.Sprintf("children reference of %q must be non-empty string", out.Title), Err: err}
			}
			out.Children = Ref(ref)
		case '[':
			var list []Entry
			if err := json.Unmarshal(raw.Children, &list); err != nil {
				return err
			}
			out.Children = Children{kind: ChildrenInline, entries: nonNil(list)}
		default:
			return &MalformedDataError{Reason: fmt.Sprintf("children of %q must be list, reference or null", out.Title)}
		}
	}

	*e = out
	return nil
}

func isJSONNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || string(raw) == "null"
}

func nonNil(entries []Entry) []Entry {
	if entries == nil {
		return []Entry{}
	}
	return entries
}

type tableJSON struct {
	Name    string  `json:"name,omitempty"`
	Entries []Entry `json:"entries"`
}

func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(tableJSON{Name: t.name, Entries: nonNil(t.entries)})
}

// EncodeJSON writes indented table document.
func EncodeJSON(w io.Writer, t *Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(tableJSON{Name: t.name, Entries: nonNil(t.entries)})
}

// ValidateJSON checks table document against its schema.
func ValidateJSON(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("unable to compile table schema: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return &MalformedDataError{Reason: "not a JSON document", Err: err}
	}
	if err := schema.Validate(doc); err != nil {
		return &MalformedDataError{Reason: "document does not match table schema", Err: err}
	}
	return nil
}

// DecodeJSON validates and decodes table document.
func DecodeJSON(data []byte, source string) (*Table, error) {
	if err := ValidateJSON(data); err != nil {
		return nil, withSource(err, source)
	}
	var doc tableJSON
	if err := json.Unmarshal(data, &doc); err != nil {
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

// withSource makes sure returned error is MalformedDataError naming source.
func withSource(err error, source string) error {
	var me *MalformedDataError
	if errors.As(err, &me) {
		if len(me.Source) == 0 {
			me.Source = source
		}
		return err
	}
	return &MalformedDataError{Source: source, Err: err}
}

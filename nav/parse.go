package nav

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

type valueKind int

const (
	valueNull valueKind = iota
	valueString
	valueArray
	valueObject
	valueScalar
)

func (k valueKind) String() string {
	switch k {
	case valueNull:
		return "null"
	case valueString:
		return "string"
	case valueArray:
		return "list"
	case valueObject:
		return "object"
	}
	return "scalar"
}

// value is a literal read from the script before it is known to be a table.
type value struct {
	kind  valueKind
	str   string
	items []value
	pos   int
}

type statement struct {
	name  string
	value value
	pos   int
}

// scanner reads literal values out of javascript source, only the subset
// Doxygen uses for navigation data is understood: variable declarations
// initialized with lists, objects, strings, numbers, booleans and null.
type scanner struct {
	data   []byte
	source string
	lex    *js.Lexer

	tt   js.TokenType
	text []byte
	pos  int // offset of current token
	end  int // offset right after current token
}

func newScanner(data []byte, source string) *scanner {
	s := &scanner{
		data:   data,
		source: source,
		lex:    js.NewLexer(parse.NewInput(bytes.NewReader(data))),
	}
	s.advance()
	return s
}

func (s *scanner) advance() {
	for {
		tt, text := s.lex.Next()
		s.pos = s.end
		s.end += len(text)
		switch tt {
		case js.WhitespaceToken, js.LineTerminatorToken, js.CommentToken, js.CommentLineTerminatorToken:
			continue
		}
		s.tt, s.text = tt, text
		return
	}
}

func (s *scanner) errorf(pos int, path []int, format string, args ...any) *MalformedDataError {
	line, col, _ := parse.Position(bytes.NewReader(s.data), pos)
	return &MalformedDataError{
		Source: s.source,
		Line:   line,
		Col:    col,
		Path:   path,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (s *scanner) unexpected(want string) error {
	if s.tt == js.ErrorToken {
		if err := s.lex.Err(); err != nil && err != io.EOF {
			e := s.errorf(s.pos, nil, "unable to tokenize")
			e.Err = err
			return e
		}
		return s.errorf(s.pos, nil, "unexpected end of input, expecting %s", want)
	}
	return s.errorf(s.pos, nil, "unexpected %q, expecting %s", s.text, want)
}

func (s *scanner) statements() ([]statement, error) {
	var list []statement
	for s.tt != js.ErrorToken {
		st, err := s.statement()
		if err != nil {
			return nil, err
		}
		list = append(list, st)
	}
	if err := s.lex.Err(); err != nil && err != io.EOF {
		e := s.errorf(s.pos, nil, "unable to tokenize")
		e.Err = err
		return nil, e
	}
	return list, nil
}

func (s *scanner) statement() (statement, error) {
	st := statement{pos: s.pos}
	switch s.tt {
	case js.VarToken, js.LetToken, js.ConstToken:
		s.advance()
		if s.tt != js.IdentifierToken {
			return st, s.unexpected("variable name")
		}
		st.name = string(s.text)
		s.advance()
		if s.tt != js.EqToken {
			return st, s.unexpected("'='")
		}
		s.advance()
	}

	v, err := s.value()
	if err != nil {
		return st, err
	}
	st.value = v

	if s.tt == js.SemicolonToken {
		s.advance()
	}
	return st, nil
}

func (s *scanner) value() (value, error) {
	v := value{pos: s.pos}
	switch s.tt {
	case js.OpenBracketToken:
		return s.list()
	case js.OpenBraceToken:
		return s.object()
	case js.StringToken:
		str, err := unquote(s.text)
		if err != nil {
			e := s.errorf(s.pos, nil, "bad string literal")
			e.Err = err
			return v, e
		}
		v.kind, v.str = valueString, str
	case js.NullToken:
		v.kind = valueNull
	case js.TrueToken, js.FalseToken, js.DecimalToken:
		v.kind, v.str = valueScalar, string(s.text)
	default:
		return v, s.unexpected("value")
	}
	s.advance()
	return v, nil
}

// list reads [a, b, ...], trailing comma is allowed, holes are not.
func (s *scanner) list() (value, error) {
	v := value{kind: valueArray, pos: s.pos}
	s.advance()
	for s.tt != js.CloseBracketToken {
		item, err := s.value()
		if err != nil {
			return v, err
		}
		v.items = append(v.items, item)
		if s.tt == js.CommaToken {
			s.advance()
		} else if s.tt != js.CloseBracketToken {
			return v, s.unexpected("',' or ']'")
		}
	}
	s.advance()
	return v, nil
}

// object reads {key: value, ...}. Keys are not kept, objects never form
// tables.
func (s *scanner) object() (value, error) {
	v := value{kind: valueObject, pos: s.pos}
	s.advance()
	for s.tt != js.CloseBraceToken {
		switch s.tt {
		case js.ErrorToken, js.ColonToken, js.CommaToken, js.OpenBracketToken, js.OpenBraceToken, js.CloseBracketToken:
			return v, s.unexpected("property name")
		}
		s.advance()
		if s.tt != js.ColonToken {
			return v, s.unexpected("':'")
		}
		s.advance()
		item, err := s.value()
		if err != nil {
			return v, err
		}
		v.items = append(v.items, item)
		if s.tt == js.CommaToken {
			s.advance()
		} else if s.tt != js.CloseBraceToken {
			return v, s.unexpected("',' or '}'")
		}
	}
	s.advance()
	return v, nil
}

func (s *scanner) table(name string, v value) (*Table, error) {
	entries, err := s.entries(v, nil)
	if err != nil {
		return nil, err
	}
	return &Table{name: name, entries: entries}, nil
}

func (s *scanner) entries(v value, path []int) ([]Entry, error) {
	if v.kind != valueArray {
		return nil, s.errorf(v.pos, path, "expecting list of entries, got %s", v.kind)
	}
	entries := make([]Entry, 0, len(v.items))
	for i, item := range v.items {
		e, err := s.entry(item, append(slices.Clone(path), i))
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *scanner) entry(v value, path []int) (Entry, error) {
	var e Entry

	if v.kind != valueArray {
		return e, s.errorf(v.pos, path, "entry must be [title, target, children] list, got %s", v.kind)
	}
	if len(v.items) != 3 {
		return e, s.errorf(v.pos, path, "entry must have 3 fields, got %d", len(v.items))
	}
	title, target, children := v.items[0], v.items[1], v.items[2]

	if title.kind != valueString || len(strings.TrimSpace(title.str)) == 0 {
		return e, s.errorf(title.pos, path, "title must be non-empty string, got %s", title.kind)
	}
	e.Title = title.str

	switch target.kind {
	case valueNull:
	case valueString:
		e.Target = NewTarget(target.str)
	default:
		return e, s.errorf(target.pos, path, "target must be string or null, got %s", target.kind)
	}

	switch children.kind {
	case valueNull:
	case valueString:
		if len(children.str) == 0 {
			return e, s.errorf(children.pos, path, "children reference must not be empty")
		}
		e.Children = Ref(children.str)
	case valueArray:
		list, err := s.entries(children, path)
		if err != nil {
			return e, err
		}
		e.Children = Children{kind: ChildrenInline, entries: list}
	default:
		return e, s.errorf(children.pos, path, "children must be list, reference or null, got %s", children.kind)
	}
	return e, nil
}

// Parse reads script holding exactly one table: "var name = [...];" (let and
// const work too) or a bare list literal. Nothing is returned unless the
// whole table is well formed.
func Parse(data []byte, source string) (*Table, error) {
	s := newScanner(data, source)
	list, err := s.statements()
	if err != nil {
		return nil, err
	}
	switch len(list) {
	case 0:
		return nil, s.errorf(0, nil, "no table found")
	case 1:
	default:
		return nil, s.errorf(list[1].pos, nil, "expecting single table, got %d statements", len(list))
	}
	return s.table(list[0].name, list[0].value)
}

// ParseScript reads every table defined in script, Doxygen navtreedata.js
// keeps the root table next to unrelated variables. Declarations whose value
// is a list starting with a list (or an empty list) are tables and must be
// well formed, everything else is ignored.
func ParseScript(data []byte, source string) ([]*Table, error) {
	s := newScanner(data, source)
	list, err := s.statements()
	if err != nil {
		return nil, err
	}
	var tables []*Table
	for _, st := range list {
		if !looksLikeTable(st.value) {
			continue
		}
		t, err := s.table(st.name, st.value)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func looksLikeTable(v value) bool {
	return v.kind == valueArray && (len(v.items) == 0 || v.items[0].kind == valueArray)
}

// Sniff reports whether script starts with a declaration initialized by a
// list, which is how navigation tables begin. It is cheap way to skip
// unrelated scripts.
func Sniff(data []byte) bool {
	s := newScanner(data, "")
	switch s.tt {
	case js.OpenBracketToken:
		return true
	case js.VarToken, js.LetToken, js.ConstToken:
	default:
		return false
	}
	s.advance()
	if s.tt != js.IdentifierToken {
		return false
	}
	s.advance()
	if s.tt != js.EqToken {
		return false
	}
	s.advance()
	return s.tt == js.OpenBracketToken
}

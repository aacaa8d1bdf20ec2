package nav

import (
	"fmt"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// IsIdentifier reports whether name can be used as table name in a script,
// that is "var name = [...]" would be read back by Parse. Reserved words are
// not identifiers.
func IsIdentifier(name string) bool {
	if len(name) == 0 {
		return false
	}
	lex := js.NewLexer(parse.NewInput(strings.NewReader(name)))
	tt, text := lex.Next()
	if tt != js.IdentifierToken || len(text) != len(name) {
		return false
	}
	tt, _ = lex.Next()
	return tt == js.ErrorToken
}

// Identifier turns arbitrary string (usually file name) into table name:
// characters which may not appear in identifiers become "_", names starting
// with digit or colliding with reserved words get "_" prefix.
func Identifier(s string) string {
	if IsIdentifier(s) {
		return s
	}
	name := mapIdentifier(s, func(r rune) bool {
		return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
	})
	if IsIdentifier(name) {
		return name
	}
	// lexer is stricter than unicode tables for some letters
	name = mapIdentifier(s, func(r rune) bool {
		return r == '_' || r == '$' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
	})
	if !IsIdentifier(name) {
		name = "_" + name
	}
	return name
}

// checkName accepts empty name, decoders leave naming to the caller then.
func checkName(name, source string) error {
	if len(name) == 0 || IsIdentifier(name) {
		return nil
	}
	return &MalformedDataError{Source: source, Reason: fmt.Sprintf("table name %q is not a javascript identifier", name)}
}

func mapIdentifier(s string, keep func(rune) bool) string {
	var b strings.Builder
	for i, r := range s {
		if i == 0 && unicode.IsDigit(r) {
			b.WriteByte('_')
		}
		if keep(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

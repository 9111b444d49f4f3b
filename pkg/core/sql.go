package core

import "strings"

// Parameter is a value bound to a compiled statement.
// Supported values are strings, numbers, time.Time, bool, nil, Expression,
// and slices of parameters.
type Parameter = any

// Expression wraps a raw SQL fragment. Expressions are emitted verbatim and
// never bound or escaped.
type Expression struct {
	SQL string
}

// Raw creates an Expression from a raw SQL fragment, e.g. Raw("CURRENT_TIMESTAMP").
func Raw(sql string) Expression {
	return Expression{SQL: sql}
}

// String returns the raw SQL fragment.
func (e Expression) String() string {
	return e.SQL
}

// CompiledSQL is the output of every grammar.
// SQL is always equal to JoinParts(Parts). Bindings are positional, in
// emission order.
type CompiledSQL struct {
	SQL      string
	Bindings []Parameter
	Parts    []string
}

// NewCompiledSQL builds a CompiledSQL from a token array and its bindings.
func NewCompiledSQL(parts []string, bindings []Parameter) CompiledSQL {
	if bindings == nil {
		bindings = []Parameter{}
	}
	return CompiledSQL{
		SQL:      JoinParts(parts),
		Bindings: bindings,
		Parts:    parts,
	}
}

// JoinParts renders a token array as SQL text.
//
// Tokens are separated by a single space, except that no space is written
// before a token starting with "," or ")" and none after a token ending
// with "(". Empty tokens contribute nothing.
func JoinParts(parts []string) string {
	var b strings.Builder
	prev := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 && spaceBetween(prev, p) {
			b.WriteByte(' ')
		}
		b.WriteString(p)
		prev = p
	}
	return b.String()
}

func spaceBetween(prev, next string) bool {
	if strings.HasSuffix(prev, "(") {
		return false
	}
	if strings.HasPrefix(next, ",") || strings.HasPrefix(next, ")") {
		return false
	}
	return true
}

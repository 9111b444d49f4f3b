package query

import (
	"fmt"
	"reflect"

	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/lexer"
	"github.com/leapstack-labs/leapdb/pkg/token"
)

// Statement accumulates the token array and bindings of one compile call.
// The placeholder counter lives here, so every compile entry point starts
// numbering at 1.
type Statement struct {
	style        core.PlaceholderStyle
	arrayBinding bool

	index    int
	parts    []string
	bindings []core.Parameter
}

// Emit appends tokens verbatim.
func (s *Statement) Emit(parts ...string) {
	s.parts = append(s.parts, parts...)
}

// Bind records a binding and returns its placeholder without emitting it.
func (s *Statement) Bind(value core.Parameter) string {
	s.index++
	s.bindings = append(s.bindings, value)
	return s.style.FormatPlaceholder(s.index)
}

// EmitValue emits a placeholder for value, or the raw SQL of an Expression.
func (s *Statement) EmitValue(value core.Parameter) {
	if expr, ok := value.(core.Expression); ok {
		s.Emit(expr.SQL)
		return
	}
	s.Emit(s.Bind(value))
}

// EmitList emits items separated by comma tokens.
func (s *Statement) EmitList(items []string) {
	for i, item := range items {
		if i > 0 {
			s.Emit(",")
		}
		s.Emit(item)
	}
}

// Len reports the number of tokens emitted so far.
func (s *Statement) Len() int {
	return len(s.parts)
}

// Compiled returns the finished statement.
func (s *Statement) Compiled() core.CompiledSQL {
	parts := append([]string(nil), s.parts...)
	bindings := append([]core.Parameter(nil), s.bindings...)
	return core.NewCompiledSQL(parts, bindings)
}

// Conditions emits a condition list. The first rendered condition is
// introduced by keyword instead of its own conjunction; an empty keyword
// renders the list bare.
func (s *Statement) Conditions(keyword string, conditions []Condition) error {
	first := true
	for _, c := range conditions {
		if isEmptyNested(c) {
			continue
		}

		b := c.base()
		switch {
		case !first:
			s.Emit(string(b.Join))
		case keyword != "":
			s.Emit(keyword)
		}
		first = false
		if b.Negate {
			s.Emit("not")
		}

		var err error
		switch c := c.(type) {
		case Operation:
			s.operation(c)
		case OperationColumn:
			s.Emit(c.Column1, c.Operator, c.Column2)
		case RawCondition:
			err = s.Raw(c.SQL, c.Bindings)
		case NullCondition:
			s.Emit(c.Column, "is", "null")
		case NestedCondition:
			s.Emit("(")
			err = s.Conditions("", c.Query.parts.Where)
			s.Emit(")")
		default:
			err = fmt.Errorf("unknown condition type %T", c)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Statement) operation(c Operation) {
	if c.Operator != "in" && c.Operator != "not in" {
		s.Emit(c.Column, c.Operator)
		s.EmitValue(c.Value)
		return
	}

	values, isList := sliceValues(c.Value)
	if !isList {
		s.Emit(c.Column, c.Operator, "(")
		s.EmitValue(c.Value)
		s.Emit(")")
		return
	}

	if s.arrayBinding {
		if c.Operator == "in" {
			s.Emit(c.Column, "=", "ANY(", s.Bind(c.Value), ")")
		} else {
			s.Emit(c.Column, "<>", "ALL(", s.Bind(c.Value), ")")
		}
		return
	}

	if len(values) == 0 {
		// "in ()" is a syntax error everywhere; an empty list matches nothing.
		if c.Operator == "in" {
			s.Emit("1", "=", "0")
		} else {
			s.Emit("1", "=", "1")
		}
		return
	}
	s.Emit(c.Column, c.Operator, "(")
	for i, v := range values {
		if i > 0 {
			s.Emit(",")
		}
		s.EmitValue(v)
	}
	s.Emit(")")
}

// isEmptyNested reports whether c is a nested group that renders nothing,
// including groups holding only other empty groups.
func isEmptyNested(c Condition) bool {
	nested, ok := c.(NestedCondition)
	if !ok {
		return false
	}
	if nested.Query == nil {
		return true
	}
	for _, inner := range nested.Query.parts.Where {
		if !isEmptyNested(inner) {
			return false
		}
	}
	return true
}

// sliceValues unpacks any slice or array value except []byte.
func sliceValues(v core.Parameter) ([]core.Parameter, bool) {
	if v == nil {
		return nil, false
	}
	if _, ok := v.([]byte); ok {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]core.Parameter, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Raw tokenizes a SQL fragment and emits it with its "?" markers renumbered
// in this statement's placeholder style. Tokens written without whitespace
// between them stay in one part, so the fragment's own spacing survives.
func (s *Statement) Raw(sql string, bindings []core.Parameter) error {
	tokens, err := lexer.Tokenize(sql)
	if err != nil {
		return fmt.Errorf("failed to tokenize raw fragment: %w", err)
	}

	params := 0
	for _, tok := range tokens {
		if tok.Type == token.PARAM {
			params++
		}
	}
	if params != len(bindings) {
		return fmt.Errorf("%w: %q has %d placeholders, got %d bindings", ErrBindingMismatch, sql, params, len(bindings))
	}

	next := 0
	glue := false
	end := -1
	for _, tok := range tokens {
		if tok.Type == token.PARAM {
			s.EmitValue(bindings[next])
			next++
			glue = false
			continue
		}
		if glue && tok.Pos.Offset == end {
			s.parts[len(s.parts)-1] += tok.Literal
		} else {
			s.Emit(tok.Literal)
		}
		glue = true
		end = tok.Pos.Offset + len(tok.Literal)
	}
	return nil
}

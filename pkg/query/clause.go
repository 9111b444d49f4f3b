package query

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/leapdb/pkg/core"
)

// Conjunction joins a condition to the one before it.
type Conjunction string

const (
	ConjunctionAnd Conjunction = "and"
	ConjunctionOr  Conjunction = "or"
)

// Condition is one entry of a where, having or join-on list.
//
// Condition lists are flat sequences folded left to right, not trees. The
// first entry's conjunction is never rendered: the clause keyword takes its
// place. Grouping is expressed with NestedCondition.
type Condition interface {
	base() ConditionBase
}

// ConditionBase carries the flags shared by every condition kind.
type ConditionBase struct {
	Join   Conjunction
	Negate bool
}

func (b ConditionBase) base() ConditionBase { return b }

// Operation compares a column to a bound value: "column op ?".
type Operation struct {
	ConditionBase
	Column   string
	Operator string
	Value    core.Parameter
}

// OperationColumn compares two columns: "column1 op column2".
type OperationColumn struct {
	ConditionBase
	Column1  string
	Operator string
	Column2  string
}

// RawCondition is a SQL fragment with "?" markers for its bindings.
type RawCondition struct {
	ConditionBase
	SQL      string
	Bindings []core.Parameter
}

// NullCondition tests a column for null.
type NullCondition struct {
	ConditionBase
	Column string
}

// NestedCondition renders another query's where list as a parenthesized group.
type NestedCondition struct {
	ConditionBase
	Query *Query
}

// ConditionOption adjusts the conjunction or negation of a new condition.
type ConditionOption func(*ConditionBase)

// Or joins the condition with "or" instead of "and".
func Or() ConditionOption {
	return func(b *ConditionBase) { b.Join = ConjunctionOr }
}

// Not negates the condition.
func Not() ConditionOption {
	return func(b *ConditionBase) { b.Negate = true }
}

func newBase(opts []ConditionOption) ConditionBase {
	b := ConditionBase{Join: ConjunctionAnd}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// On builds a column-to-column condition, typically for a join.
func On(column1, op, column2 string, opts ...ConditionOption) Condition {
	return OperationColumn{
		ConditionBase: newBase(opts),
		Column1:       column1,
		Operator:      strings.ToLower(op),
		Column2:       column2,
	}
}

// Where builds a column-to-value condition for use in join lists.
func Where(column, op string, value core.Parameter, opts ...ConditionOption) Condition {
	return Operation{
		ConditionBase: newBase(opts),
		Column:        column,
		Operator:      strings.ToLower(op),
		Value:         value,
	}
}

// JoinType selects the kind of join.
type JoinType string

const (
	InnerJoin JoinType = "inner"
	LeftJoin  JoinType = "left"
	RightJoin JoinType = "right"
	FullJoin  JoinType = "full"
)

// Join is one join clause. Exactly one of Table and Subquery is set; a
// subquery join requires Alias.
type Join struct {
	Type       JoinType
	Table      string
	Subquery   *Query
	Alias      string
	Conditions []Condition
}

// OrderTerm is one "column direction" entry of an order by clause.
type OrderTerm struct {
	Column    string
	Direction string
}

// Parts holds every clause of a statement under construction.
type Parts struct {
	Select  []string
	Table   string
	Joins   []Join
	Where   []Condition
	GroupBy []string
	Having  []Condition
	OrderBy []OrderTerm
	Limit   *int
	Offset  *int
}

// operators is the allow-list of comparison operators accepted by the builder.
var operators = map[string]bool{
	"=":         true,
	">":         true,
	"<":         true,
	">=":        true,
	"<=":        true,
	"!=":        true,
	"<>":        true,
	"like":      true,
	"ilike":     true,
	"not like":  true,
	"not ilike": true,
	"in":        true,
	"not in":    true,
	"is":        true,
	"is not":    true,
}

// IsOperator reports whether op is an accepted comparison operator.
func IsOperator(op string) bool {
	return operators[strings.ToLower(op)]
}

// Operators returns the accepted comparison operators.
func Operators() []string {
	ops := make([]string, 0, len(operators))
	for op := range operators {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

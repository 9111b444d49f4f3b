// Package query builds SQL statements and compiles them through a
// dialect grammar.
//
// A Query accumulates clause parts through chained mutators. Terminal
// operations compile the parts with the bound Grammar and run the result on
// the bound executor. A Query is stateful: conditions added for one
// statement remain for the next until ClearWhere is called.
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapdb/pkg/core"
)

// Query is a mutable statement builder. It is not safe for concurrent use.
type Query struct {
	parts    Parts
	grammar  Grammar
	executor core.Executor

	// err is the first builder error; every terminal operation returns it.
	err error
}

// New creates a Query compiled by grammar and executed by executor.
// The executor may be nil when only ToSQL and the Compile methods are used.
func New(grammar Grammar, executor core.Executor) *Query {
	return &Query{grammar: grammar, executor: executor}
}

// Parts returns a copy of the clause parts accumulated so far.
func (q *Query) Parts() Parts {
	p := q.parts
	p.Select = append([]string(nil), q.parts.Select...)
	p.Joins = append([]Join(nil), q.parts.Joins...)
	p.Where = append([]Condition(nil), q.parts.Where...)
	p.GroupBy = append([]string(nil), q.parts.GroupBy...)
	p.Having = append([]Condition(nil), q.parts.Having...)
	p.OrderBy = append([]OrderTerm(nil), q.parts.OrderBy...)
	return p
}

// Grammar returns the grammar the query compiles with.
func (q *Query) Grammar() Grammar {
	return q.grammar
}

// Err returns the pending builder error, if any.
func (q *Query) Err() error {
	return q.err
}

func (q *Query) fail(err error) *Query {
	if q.err == nil {
		q.err = err
	}
	return q
}

func (q *Query) checkOperator(op string) bool {
	if !IsOperator(op) {
		q.fail(fmt.Errorf("%w %q", ErrInvalidOperator, op))
		return false
	}
	return true
}

// Table sets the table the statement targets.
func (q *Query) Table(name string) *Query {
	q.parts.Table = name
	return q
}

// Select sets the selected columns. No columns selects "*".
func (q *Query) Select(columns ...string) *Query {
	q.parts.Select = append([]string(nil), columns...)
	return q
}

// WhereOp adds "column op value". The value is always bound, never inlined,
// unless it is a core.Expression. An operator outside the allow-list adds
// nothing and fails every later terminal operation.
func (q *Query) WhereOp(column, op string, value core.Parameter, opts ...ConditionOption) *Query {
	if !q.checkOperator(op) {
		return q
	}
	q.parts.Where = append(q.parts.Where, Where(column, op, value, opts...))
	return q
}

// WhereColumn adds a column-to-column comparison.
func (q *Query) WhereColumn(column1, op, column2 string, opts ...ConditionOption) *Query {
	if !q.checkOperator(op) {
		return q
	}
	q.parts.Where = append(q.parts.Where, On(column1, op, column2, opts...))
	return q
}

// WhereRaw adds a raw SQL fragment. Each "?" in sql consumes one binding.
func (q *Query) WhereRaw(sql string, bindings []core.Parameter, opts ...ConditionOption) *Query {
	q.parts.Where = append(q.parts.Where, RawCondition{
		ConditionBase: newBase(opts),
		SQL:           sql,
		Bindings:      bindings,
	})
	return q
}

// WhereNull adds "column is null". Use Not() for "not column is null".
func (q *Query) WhereNull(column string, opts ...ConditionOption) *Query {
	q.parts.Where = append(q.parts.Where, NullCondition{ConditionBase: newBase(opts), Column: column})
	return q
}

// WhereNested adds a parenthesized group built by fn on a scratch query.
func (q *Query) WhereNested(fn func(*Query), opts ...ConditionOption) *Query {
	sub := New(q.grammar, nil)
	fn(sub)
	if sub.err != nil {
		return q.fail(sub.err)
	}
	q.parts.Where = append(q.parts.Where, NestedCondition{ConditionBase: newBase(opts), Query: sub})
	return q
}

// ClearWhere drops every where condition and any pending builder error.
func (q *Query) ClearWhere() *Query {
	q.parts.Where = nil
	q.err = nil
	return q
}

// Join adds a join on table with the given conditions.
func (q *Query) Join(typ JoinType, table string, conditions ...Condition) *Query {
	for _, c := range conditions {
		if !q.checkConditionOperator(c) {
			return q
		}
	}
	q.parts.Joins = append(q.parts.Joins, Join{Type: typ, Table: table, Conditions: conditions})
	return q
}

// InnerJoin adds "inner join table on (first op second)".
func (q *Query) InnerJoin(table, first, op, second string) *Query {
	return q.Join(InnerJoin, table, On(first, op, second))
}

// LeftJoin adds "left join table on (first op second)".
func (q *Query) LeftJoin(table, first, op, second string) *Query {
	return q.Join(LeftJoin, table, On(first, op, second))
}

// RightJoin adds "right join table on (first op second)".
func (q *Query) RightJoin(table, first, op, second string) *Query {
	return q.Join(RightJoin, table, On(first, op, second))
}

// FullJoin adds "full join table on (first op second)".
func (q *Query) FullJoin(table, first, op, second string) *Query {
	return q.Join(FullJoin, table, On(first, op, second))
}

// JoinSub joins a subquery under alias. The subquery's bindings are
// numbered in line with the outer statement.
func (q *Query) JoinSub(typ JoinType, sub *Query, alias string, conditions ...Condition) *Query {
	if sub == nil {
		return q.fail(ErrSubqueryRequired)
	}
	if sub.err != nil {
		return q.fail(sub.err)
	}
	for _, c := range conditions {
		if !q.checkConditionOperator(c) {
			return q
		}
	}
	q.parts.Joins = append(q.parts.Joins, Join{Type: typ, Subquery: sub, Alias: alias, Conditions: conditions})
	return q
}

func (q *Query) checkConditionOperator(c Condition) bool {
	switch c := c.(type) {
	case Operation:
		return q.checkOperator(c.Operator)
	case OperationColumn:
		return q.checkOperator(c.Operator)
	}
	return true
}

// GroupBy appends group by columns.
func (q *Query) GroupBy(columns ...string) *Query {
	q.parts.GroupBy = append(q.parts.GroupBy, columns...)
	return q
}

// HavingOp adds "column op value" to the having list.
func (q *Query) HavingOp(column, op string, value core.Parameter, opts ...ConditionOption) *Query {
	if !q.checkOperator(op) {
		return q
	}
	q.parts.Having = append(q.parts.Having, Where(column, op, value, opts...))
	return q
}

// HavingRaw adds a raw fragment to the having list.
func (q *Query) HavingRaw(sql string, bindings []core.Parameter, opts ...ConditionOption) *Query {
	q.parts.Having = append(q.parts.Having, RawCondition{
		ConditionBase: newBase(opts),
		SQL:           sql,
		Bindings:      bindings,
	})
	return q
}

// OrderBy appends an order term. Direction defaults to "asc".
func (q *Query) OrderBy(column string, direction ...string) *Query {
	dir := "asc"
	if len(direction) > 0 {
		dir = strings.ToLower(direction[0])
	}
	if dir != "asc" && dir != "desc" {
		return q.fail(fmt.Errorf("%w %q", ErrInvalidDirection, dir))
	}
	q.parts.OrderBy = append(q.parts.OrderBy, OrderTerm{Column: column, Direction: dir})
	return q
}

// Limit caps the number of rows. A negative n removes the limit.
func (q *Query) Limit(n int) *Query {
	if n < 0 {
		q.parts.Limit = nil
		return q
	}
	q.parts.Limit = &n
	return q
}

// Offset skips n rows. A negative n removes the offset.
func (q *Query) Offset(n int) *Query {
	if n < 0 {
		q.parts.Offset = nil
		return q
	}
	q.parts.Offset = &n
	return q
}

// ToSQL compiles the query as a select statement.
func (q *Query) ToSQL() (core.CompiledSQL, error) {
	return q.grammar.ToSQL(q)
}

// Get runs the select statement and returns every row.
func (q *Query) Get(ctx context.Context) ([]core.Row, error) {
	return q.run(ctx, q.grammar.ToSQL)
}

// First runs the select statement limited to one row.
// It returns ErrNoRows when nothing matches.
func (q *Query) First(ctx context.Context) (core.Row, error) {
	one := *q
	one.parts.Limit = new(int)
	*one.parts.Limit = 1
	rows, err := one.run(ctx, q.grammar.ToSQL)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows[0], nil
}

// Count runs "select count(*) as count" over the query's other clauses.
func (q *Query) Count(ctx context.Context) (int64, error) {
	rows, err := q.run(ctx, q.grammar.CompileCount)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Int64("count")
}

// GetCursor runs the select statement and returns a forward-only cursor.
// The caller must Close it.
func (q *Query) GetCursor(ctx context.Context) (core.Cursor, error) {
	if q.executor == nil {
		return nil, ErrNoExecutor
	}
	compiled, err := q.grammar.ToSQL(q)
	if err != nil {
		return nil, err
	}
	return q.executor.RunCursor(ctx, compiled)
}

// Insert inserts one row.
func (q *Query) Insert(ctx context.Context, data map[string]core.Parameter) ([]core.Row, error) {
	return q.run(ctx, func(q *Query) (core.CompiledSQL, error) {
		return q.grammar.CompileInsert(q, data)
	})
}

// InsertGetID inserts one row and returns the generated keys. Primary keys
// default to "id". Each returned row carries the key columns.
func (q *Query) InsertGetID(ctx context.Context, data map[string]core.Parameter, primaryKeys ...string) ([]core.Row, error) {
	if len(primaryKeys) == 0 {
		primaryKeys = []string{"id"}
	}
	rows, err := q.run(ctx, func(q *Query) (core.CompiledSQL, error) {
		return q.grammar.CompileInsertGetID(q, data, primaryKeys)
	})
	if err != nil {
		return nil, err
	}
	// Drivers without a returning clause report the key in the summary row.
	for i, row := range rows {
		if _, ok := row[primaryKeys[0]]; ok {
			continue
		}
		if id, ok := row[core.ColumnLastInsertID]; ok {
			rows[i] = core.Row{primaryKeys[0]: id}
		}
	}
	return rows, nil
}

// Update sets columns on every row matching the where list.
func (q *Query) Update(ctx context.Context, data map[string]core.Parameter) ([]core.Row, error) {
	return q.run(ctx, func(q *Query) (core.CompiledSQL, error) {
		return q.grammar.CompileUpdate(q, data)
	})
}

// Upsert inserts data, or on a conflict over conflictFields updates only the
// columns named in updateFields.
func (q *Query) Upsert(ctx context.Context, data map[string]core.Parameter, conflictFields, updateFields []string) ([]core.Row, error) {
	return q.run(ctx, func(q *Query) (core.CompiledSQL, error) {
		return q.grammar.CompileUpsert(q, data, conflictFields, updateFields)
	})
}

// Delete removes every row matching the where list.
func (q *Query) Delete(ctx context.Context) ([]core.Row, error) {
	return q.run(ctx, q.grammar.CompileDelete)
}

func (q *Query) run(ctx context.Context, compile func(*Query) (core.CompiledSQL, error)) ([]core.Row, error) {
	if q.executor == nil {
		return nil, ErrNoExecutor
	}
	compiled, err := compile(q)
	if err != nil {
		return nil, err
	}
	return q.executor.RunQuery(ctx, compiled)
}

package query

import (
	"sort"
	"strconv"

	"github.com/leapstack-labs/leapdb/pkg/core"
)

// Grammar compiles queries into dialect-specific SQL.
type Grammar interface {
	// Name returns the dialect name, e.g. "postgres".
	Name() string

	ToSQL(q *Query) (core.CompiledSQL, error)
	CompileCount(q *Query) (core.CompiledSQL, error)
	CompileInsert(q *Query, data map[string]core.Parameter) (core.CompiledSQL, error)
	CompileInsertGetID(q *Query, data map[string]core.Parameter, primaryKeys []string) (core.CompiledSQL, error)
	CompileUpdate(q *Query, data map[string]core.Parameter) (core.CompiledSQL, error)
	CompileDelete(q *Query) (core.CompiledSQL, error)
	CompileUpsert(q *Query, data map[string]core.Parameter, conflictFields, updateFields []string) (core.CompiledSQL, error)
}

// clauseKind identifies one select clause.
type clauseKind int

const (
	clauseSelect clauseKind = iota
	clauseTable
	clauseJoin
	clauseWhere
	clauseGroupBy
	clauseHaving
	clauseOrderBy
	clauseLimit
	clauseOffset
)

// clauseHandler emits one clause of a select statement.
type clauseHandler func(s *Statement, p *Parts) error

// clauseDef binds a clause kind to its handler.
type clauseDef struct {
	kind    clauseKind
	handler clauseHandler
}

// selectClauses lists select clauses in emission order. It is filled in
// init because the join handler compiles subqueries through it.
var selectClauses []clauseDef

func init() {
	selectClauses = []clauseDef{
		{clauseSelect, compileSelect},
		{clauseTable, compileTable},
		{clauseJoin, compileJoins},
		{clauseWhere, compileWhere},
		{clauseGroupBy, compileGroupBy},
		{clauseHaving, compileHaving},
		{clauseOrderBy, compileOrderBy},
		{clauseLimit, compileLimit},
		{clauseOffset, compileOffset},
	}
}

// BaseGrammar implements the generic compile algorithm. Dialects embed it,
// set the placeholder style, and override the statements whose syntax
// differs.
type BaseGrammar struct {
	Dialect     string
	Placeholder core.PlaceholderStyle

	// ArrayBinding compiles "in" over a slice to "= ANY(?)" with a single
	// array binding instead of one binding per element.
	ArrayBinding bool
}

// Name returns the dialect name.
func (g *BaseGrammar) Name() string {
	return g.Dialect
}

// NewStatement starts a compile call with its placeholder counter at zero.
func (g *BaseGrammar) NewStatement() *Statement {
	return &Statement{style: g.Placeholder, arrayBinding: g.ArrayBinding}
}

// ToSQL compiles q as a select statement.
func (g *BaseGrammar) ToSQL(q *Query) (core.CompiledSQL, error) {
	return g.compileSelectStatement(q, nil)
}

// CompileCount compiles q with its select list replaced by "count(*) as count".
func (g *BaseGrammar) CompileCount(q *Query) (core.CompiledSQL, error) {
	return g.compileSelectStatement(q, func(s *Statement, _ *Parts) error {
		s.Emit("select", "count(*)", "as", "count")
		return nil
	})
}

func (g *BaseGrammar) compileSelectStatement(q *Query, selectOverride clauseHandler) (core.CompiledSQL, error) {
	if q.err != nil {
		return core.CompiledSQL{}, q.err
	}
	s := g.NewStatement()
	if err := s.selectClauses(&q.parts, selectOverride); err != nil {
		return core.CompiledSQL{}, err
	}
	return s.Compiled(), nil
}

func (s *Statement) selectClauses(p *Parts, selectOverride clauseHandler) error {
	for _, def := range selectClauses {
		handler := def.handler
		if def.kind == clauseSelect && selectOverride != nil {
			handler = selectOverride
		}
		if err := handler(s, p); err != nil {
			return err
		}
	}
	return nil
}

func compileSelect(s *Statement, p *Parts) error {
	s.Emit("select")
	if len(p.Select) == 0 {
		s.Emit("*")
		return nil
	}
	s.EmitList(p.Select)
	return nil
}

func compileTable(s *Statement, p *Parts) error {
	if p.Table == "" {
		return ErrTableRequired
	}
	s.Emit("from", p.Table)
	return nil
}

func compileJoins(s *Statement, p *Parts) error {
	for _, j := range p.Joins {
		s.Emit(string(j.Type), "join")
		if j.Subquery != nil {
			if j.Subquery.err != nil {
				return j.Subquery.err
			}
			s.Emit("(")
			if err := s.selectClauses(&j.Subquery.parts, nil); err != nil {
				return err
			}
			s.Emit(")", "as", j.Alias)
		} else {
			s.Emit(j.Table)
		}
		if len(j.Conditions) == 0 {
			continue
		}
		s.Emit("on", "(")
		if err := s.Conditions("", j.Conditions); err != nil {
			return err
		}
		s.Emit(")")
	}
	return nil
}

func compileWhere(s *Statement, p *Parts) error {
	return s.Conditions("where", p.Where)
}

func compileGroupBy(s *Statement, p *Parts) error {
	if len(p.GroupBy) == 0 {
		return nil
	}
	s.Emit("group", "by")
	s.EmitList(p.GroupBy)
	return nil
}

func compileHaving(s *Statement, p *Parts) error {
	return s.Conditions("having", p.Having)
}

func compileOrderBy(s *Statement, p *Parts) error {
	if len(p.OrderBy) == 0 {
		return nil
	}
	s.Emit("order", "by")
	for i, term := range p.OrderBy {
		if i > 0 {
			s.Emit(",")
		}
		s.Emit(term.Column, term.Direction)
	}
	return nil
}

func compileLimit(s *Statement, p *Parts) error {
	if p.Limit != nil {
		s.Emit("limit", strconv.Itoa(*p.Limit))
	}
	return nil
}

func compileOffset(s *Statement, p *Parts) error {
	if p.Offset != nil {
		s.Emit("offset", strconv.Itoa(*p.Offset))
	}
	return nil
}

// InsertStatement emits "insert into T (cols) values (placeholders)" with
// columns in sorted order, for dialects to extend.
func (g *BaseGrammar) InsertStatement(q *Query, data map[string]core.Parameter) (*Statement, []string, error) {
	if q.err != nil {
		return nil, nil, q.err
	}
	if q.parts.Table == "" {
		return nil, nil, ErrTableRequired
	}
	if len(data) == 0 {
		return nil, nil, ErrEmptyData
	}
	columns := SortedColumns(data)

	s := g.NewStatement()
	s.Emit("insert", "into", q.parts.Table, "(")
	s.EmitList(columns)
	s.Emit(")", "values", "(")
	for i, col := range columns {
		if i > 0 {
			s.Emit(",")
		}
		s.EmitValue(data[col])
	}
	s.Emit(")")
	return s, columns, nil
}

// CompileInsert compiles a single-row insert.
func (g *BaseGrammar) CompileInsert(q *Query, data map[string]core.Parameter) (core.CompiledSQL, error) {
	s, _, err := g.InsertStatement(q, data)
	if err != nil {
		return core.CompiledSQL{}, err
	}
	return s.Compiled(), nil
}

// CompileInsertGetID compiles an insert followed by "returning <primaryKeys>".
func (g *BaseGrammar) CompileInsertGetID(q *Query, data map[string]core.Parameter, primaryKeys []string) (core.CompiledSQL, error) {
	s, _, err := g.InsertStatement(q, data)
	if err != nil {
		return core.CompiledSQL{}, err
	}
	if len(primaryKeys) > 0 {
		s.Emit("returning")
		s.EmitList(primaryKeys)
	}
	return s.Compiled(), nil
}

// CompileUpdate compiles "update T set c = ?, ..." followed by the where list.
func (g *BaseGrammar) CompileUpdate(q *Query, data map[string]core.Parameter) (core.CompiledSQL, error) {
	if q.err != nil {
		return core.CompiledSQL{}, q.err
	}
	if q.parts.Table == "" {
		return core.CompiledSQL{}, ErrTableRequired
	}
	if len(data) == 0 {
		return core.CompiledSQL{}, ErrEmptyData
	}

	s := g.NewStatement()
	s.Emit("update", q.parts.Table, "set")
	for i, col := range SortedColumns(data) {
		if i > 0 {
			s.Emit(",")
		}
		s.Emit(col, "=")
		s.EmitValue(data[col])
	}
	if err := s.Conditions("where", q.parts.Where); err != nil {
		return core.CompiledSQL{}, err
	}
	return s.Compiled(), nil
}

// CompileDelete compiles "delete from T" followed by the where list.
func (g *BaseGrammar) CompileDelete(q *Query) (core.CompiledSQL, error) {
	if q.err != nil {
		return core.CompiledSQL{}, q.err
	}
	if q.parts.Table == "" {
		return core.CompiledSQL{}, ErrTableRequired
	}

	s := g.NewStatement()
	s.Emit("delete", "from", q.parts.Table)
	if err := s.Conditions("where", q.parts.Where); err != nil {
		return core.CompiledSQL{}, err
	}
	return s.Compiled(), nil
}

// CompileUpsert compiles an insert with "on conflict (...) do update set
// c = excluded.c" for each column in updateFields, then the where list.
// No update fields compiles to "do nothing".
func (g *BaseGrammar) CompileUpsert(q *Query, data map[string]core.Parameter, conflictFields, updateFields []string) (core.CompiledSQL, error) {
	if len(conflictFields) == 0 {
		return core.CompiledSQL{}, ErrConflictFieldsRequired
	}
	s, _, err := g.InsertStatement(q, data)
	if err != nil {
		return core.CompiledSQL{}, err
	}

	s.Emit("on", "conflict", "(")
	s.EmitList(conflictFields)
	s.Emit(")", "do")
	if len(updateFields) == 0 {
		s.Emit("nothing")
		return s.Compiled(), nil
	}
	s.Emit("update", "set")
	for i, col := range updateFields {
		if i > 0 {
			s.Emit(",")
		}
		s.Emit(col, "=", "excluded."+col)
	}
	if err := s.Conditions("where", q.parts.Where); err != nil {
		return core.CompiledSQL{}, err
	}
	return s.Compiled(), nil
}

// SortedColumns returns the keys of data in ascending order.
func SortedColumns(data map[string]core.Parameter) []string {
	columns := make([]string, 0, len(data))
	for col := range data {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}

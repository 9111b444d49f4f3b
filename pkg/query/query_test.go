package query_test

import (
	"context"
	"testing"

	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingExecutor captures compiled statements and answers with fixed rows.
type recordingExecutor struct {
	calls []core.CompiledSQL
	rows  []core.Row
}

func (r *recordingExecutor) RunQuery(_ context.Context, sql core.CompiledSQL) ([]core.Row, error) {
	r.calls = append(r.calls, sql)
	return r.rows, nil
}

func (r *recordingExecutor) RunCursor(_ context.Context, sql core.CompiledSQL) (core.Cursor, error) {
	r.calls = append(r.calls, sql)
	return nil, nil
}

func TestTerminalOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("get", func(t *testing.T) {
		exec := &recordingExecutor{rows: []core.Row{{"id": int64(1)}}}
		rows, err := query.New(questionGrammar(), exec).Table("posts").WhereOp("search_order", "<", "55").Get(ctx)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
		require.Len(t, exec.calls, 1)
		assert.Equal(t, "select * from posts where search_order < ?", exec.calls[0].SQL)
		assert.Equal(t, []core.Parameter{"55"}, exec.calls[0].Bindings)
	})

	t.Run("first limits to one row without changing the query", func(t *testing.T) {
		exec := &recordingExecutor{rows: []core.Row{{"id": int64(1)}}}
		q := query.New(questionGrammar(), exec).Table("posts")
		row, err := q.First(ctx)
		require.NoError(t, err)
		assert.Equal(t, core.Row{"id": int64(1)}, row)
		assert.Equal(t, "select * from posts limit 1", exec.calls[0].SQL)
		assert.Nil(t, q.Parts().Limit)
	})

	t.Run("first with no rows", func(t *testing.T) {
		_, err := query.New(questionGrammar(), &recordingExecutor{}).Table("posts").First(ctx)
		assert.ErrorIs(t, err, query.ErrNoRows)
	})

	t.Run("count", func(t *testing.T) {
		exec := &recordingExecutor{rows: []core.Row{{"count": int64(42)}}}
		n, err := query.New(questionGrammar(), exec).Table("posts").Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(42), n)
		assert.Equal(t, "select count(*) as count from posts", exec.calls[0].SQL)
	})

	t.Run("insert get id maps the last insert id", func(t *testing.T) {
		exec := &recordingExecutor{rows: []core.Row{{core.ColumnRowsAffected: int64(1), core.ColumnLastInsertID: int64(9)}}}
		rows, err := query.New(questionGrammar(), exec).Table("posts").
			InsertGetID(ctx, map[string]core.Parameter{"title": "x"})
		require.NoError(t, err)
		assert.Equal(t, []core.Row{{"id": int64(9)}}, rows)
	})

	t.Run("insert get id keeps returned keys", func(t *testing.T) {
		exec := &recordingExecutor{rows: []core.Row{{"post_id": int64(3)}}}
		rows, err := query.New(dollarGrammar(), exec).Table("posts").
			InsertGetID(ctx, map[string]core.Parameter{"title": "x"}, "post_id")
		require.NoError(t, err)
		assert.Equal(t, []core.Row{{"post_id": int64(3)}}, rows)
		assert.Equal(t, "insert into posts (title) values ($1) returning post_id", exec.calls[0].SQL)
	})

	t.Run("update upsert delete", func(t *testing.T) {
		exec := &recordingExecutor{}
		q := query.New(questionGrammar(), exec).Table("posts").WhereOp("id", "=", 1)

		_, err := q.Update(ctx, map[string]core.Parameter{"title": "y"})
		require.NoError(t, err)
		_, err = q.Upsert(ctx, map[string]core.Parameter{"id": 1, "title": "z"}, []string{"id"}, []string{"title"})
		require.NoError(t, err)
		_, err = q.Delete(ctx)
		require.NoError(t, err)

		require.Len(t, exec.calls, 3)
		assert.Equal(t, "update posts set title = ? where id = ?", exec.calls[0].SQL)
		assert.Equal(t, "insert into posts (id, title) values (?, ?) on conflict (id) do update set title = excluded.title where id = ?", exec.calls[1].SQL)
		assert.Equal(t, "delete from posts where id = ?", exec.calls[2].SQL)
	})

	t.Run("cursor", func(t *testing.T) {
		exec := &recordingExecutor{}
		_, err := query.New(questionGrammar(), exec).Table("posts").OrderBy("id").GetCursor(ctx)
		require.NoError(t, err)
		assert.Equal(t, "select * from posts order by id asc", exec.calls[0].SQL)
	})

	t.Run("builder errors stop execution", func(t *testing.T) {
		exec := &recordingExecutor{}
		_, err := query.New(questionGrammar(), exec).Table("posts").WhereOp("id", "~", 1).Delete(ctx)
		require.ErrorIs(t, err, query.ErrInvalidOperator)
		assert.Empty(t, exec.calls)
	})

	t.Run("no executor", func(t *testing.T) {
		_, err := query.New(questionGrammar(), nil).Table("posts").Get(ctx)
		assert.ErrorIs(t, err, query.ErrNoExecutor)
	})
}

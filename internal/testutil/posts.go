package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdb/pkg/connection"
	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/schema"
)

// PostCount is the number of rows SeedPosts inserts.
const PostCount = 100

// SearchOrder returns the search_order of the i-th seeded post. Values
// 0..50 are unique, 51..83 cycle through 55..84 and 84..99 run 85..100.
func SearchOrder(i int) int {
	switch {
	case i <= 50:
		return i
	case i <= 83:
		return 55 + (i-51)%30
	default:
		return 85 + (i - 84)
	}
}

// SeedPosts creates the posts table on conn and inserts PostCount rows.
func SeedPosts(ctx context.Context, t testing.TB, conn connection.Connection) {
	t.Helper()

	err := conn.Schema().CreateTable(ctx, "posts", func(b *schema.Blueprint) {
		b.ID()
		b.String("title")
		b.Text("body").Nullable()
		b.Integer("search_order")
	})
	require.NoError(t, err)

	for i := range PostCount {
		_, err := conn.Query().Table("posts").Insert(ctx, core.Row{
			"title":        fmt.Sprintf("post %d", i),
			"body":         fmt.Sprintf("body of post %d", i),
			"search_order": SearchOrder(i),
		})
		require.NoError(t, err)
	}
}

package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leapdb/pkg/core"
)

// isoMillis is the JavaScript-style ISO-8601 layout used for date literals.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Escape renders value as an inline SQL literal for DDL defaults.
//
// Strings only have their first single quote backslash-escaped unless the
// grammar was built WithStrictEscaping, which doubles every quote.
func (g *Grammar) Escape(value core.Parameter) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case core.Expression:
		return v.SQL
	case bool:
		if v {
			return "true"
		}
		return "false"
	case string:
		return g.quote(v)
	case []byte:
		return g.quote(string(v))
	case time.Time:
		return "'" + v.UTC().Format(isoMillis) + "'"
	case uuid.UUID:
		return "'" + v.String() + "'"
	case int:
		return strconv.Itoa(v)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		items := make([]string, rv.Len())
		for i := range items {
			items[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return g.quote("{" + strings.Join(items, ",") + "}")
	}
	return g.quote(fmt.Sprint(value))
}

func (g *Grammar) quote(s string) string {
	if g.strictEscaping {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return "'" + strings.Replace(s, "'", "\\'", 1) + "'"
}

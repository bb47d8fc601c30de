package sqlcompile

import (
	"fmt"
	"strings"
)

// SQLite targets the json1 extension (json_extract / json_each), with
// positional "?" placeholders.
type SQLite struct{}

func (SQLite) Placeholder(int) string { return "?" }

func (SQLite) JSONText(column string, segs []string) string {
	return fmt.Sprintf("json_extract(%s, '$.%s')", column, strings.Join(segs, "."))
}

func (SQLite) ExistsOverArray(column string, segs []string, alias, innerWhere string) string {
	return fmt.Sprintf(
		"EXISTS (SELECT 1 FROM json_each(%s, '$.%s') AS %s WHERE %s)",
		column, strings.Join(segs, "."), alias, innerWhere,
	)
}

func (SQLite) ElementText(alias string, segs []string) string {
	return fmt.Sprintf("json_extract(%s.value, '$.%s')", alias, strings.Join(segs, "."))
}

func (SQLite) BoolText(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

package sqlcompile

import (
	"fmt"
	"strings"
)

// Postgres targets jsonb columns accessed with #>> / jsonb_array_elements.
type Postgres struct{}

func (Postgres) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (Postgres) JSONText(column string, segs []string) string {
	return fmt.Sprintf("%s #>> '{%s}'", column, strings.Join(segs, ","))
}

func (Postgres) ExistsOverArray(column string, segs []string, alias, innerWhere string) string {
	return fmt.Sprintf(
		"EXISTS (SELECT 1 FROM jsonb_array_elements(%s #> '{%s}') AS %s WHERE %s)",
		column, strings.Join(segs, ","), alias, innerWhere,
	)
}

func (Postgres) ElementText(alias string, segs []string) string {
	return fmt.Sprintf("%s #>> '{%s}'", alias, strings.Join(segs, ","))
}

func (Postgres) BoolText(v bool) string {
	if v {
		return "'true'"
	}
	return "'false'"
}

package query

import (
	"fmt"
	"strings"
)

// UpdateBuilder constructs a partial UPDATE statement from only the columns that are set.
type UpdateBuilder struct {
	table   string
	sets    []string
	touched []string
	args    []any
}

// NewUpdate creates an UpdateBuilder for the given table.
func NewUpdate(table string) *UpdateBuilder {
	return &UpdateBuilder{
		table: table,
		sets:  make([]string, 0),
		args:  make([]any, 0),
	}
}

// Set adds "column = $n". No-op for nil values, so optional pointer fields can be passed directly.
func (u *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	if isNil(value) {
		return u
	}
	u.args = append(u.args, value)
	u.sets = append(u.sets, fmt.Sprintf("%s = $%d", column, len(u.args)))
	return u
}

// Touch adds "column = NOW()". Touched columns do not count toward Empty.
func (u *UpdateBuilder) Touch(column string) *UpdateBuilder {
	u.touched = append(u.touched, column+" = NOW()")
	return u
}

// Empty reports whether no columns have been set.
func (u *UpdateBuilder) Empty() bool {
	return len(u.sets) == 0
}

// Build returns the UPDATE statement with the key bound as the final parameter.
func (u *UpdateBuilder) Build(keyColumn string, key any) (string, []any) {
	args := append(append([]any{}, u.args...), key)
	sql := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d",
		u.table,
		strings.Join(append(append([]string{}, u.sets...), u.touched...), ", "),
		keyColumn,
		len(args),
	)
	return sql, args
}

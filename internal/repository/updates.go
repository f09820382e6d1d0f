package repository

import "strings"

// updateBuilder accumulates (column, value) pairs and renders a parameterized
// UPDATE statement.  Partial updates (profile edits, admin user edits) add
// only the columns the client actually sent; values are always bound, never
// interpolated into the SQL text.
type updateBuilder struct {
    table   string
    columns []string
    args    []interface{}
}

func newUpdate(table string) *updateBuilder {
    return &updateBuilder{table: table}
}

// Set queues one column assignment.
func (b *updateBuilder) Set(column string, value interface{}) *updateBuilder {
    b.columns = append(b.columns, column)
    b.args = append(b.args, value)
    return b
}

// Empty reports whether no assignments were queued.
func (b *updateBuilder) Empty() bool { return len(b.columns) == 0 }

// Build renders "UPDATE <table> SET c1=?, c2=? WHERE <where>" and returns the
// bound argument list with the where-arguments appended.
func (b *updateBuilder) Build(where string, whereArgs ...interface{}) (string, []interface{}) {
    var sb strings.Builder
    sb.WriteString("UPDATE ")
    sb.WriteString(b.table)
    sb.WriteString(" SET ")
    for i, col := range b.columns {
        if i > 0 {
            sb.WriteString(", ")
        }
        sb.WriteString(col)
        sb.WriteString("=?")
    }
    sb.WriteString(" WHERE ")
    sb.WriteString(where)
    return sb.String(), append(b.args, whereArgs...)
}

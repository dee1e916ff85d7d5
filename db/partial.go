package db

import (
	"strconv"
	"strings"
)

// Change is one field assignment of a partial update.
type Change struct {
	Field string
	Value Value
}

// Set pairs a field name with its new value.
func Set(field string, v Value) Change { return Change{Field: field, Value: v} }

// Changes is an ordered list of field assignments. Order is significant: it
// fixes the placeholder numbering of the generated SET clause.
type Changes []Change

// ColumnMap translates application field names (camelCase) to column names
// (snake_case). Fields without an entry are used verbatim.
type ColumnMap map[string]string

// Column resolves field to its column name. An entry mapped to "" is
// honoured as "", not treated as missing.
func (m ColumnMap) Column(field string) string {
	if col, ok := m[field]; ok {
		return col
	}
	return field
}

// SetClause is the output of PartialUpdate: a comma-joined list of
// `"column"=$n` fragments and the values bound to $1..$n, in order.
type SetClause struct {
	SetCols string
	Values  []Value
}

// PartialUpdate renders changes as the SET list of an UPDATE statement.
//
//	clause, err := db.PartialUpdate(
//	    db.Changes{db.Set("firstName", db.String("Aliya")), db.Set("age", db.Int(32))},
//	    db.ColumnMap{"firstName": "first_name"},
//	)
//	// clause.SetCols: `"first_name"=$1, "age"=$2`
//	// clause.Values:  ["Aliya", 32]
//
// Only values are parameterised. Column names, mapped or not, are written
// into the SQL text as-is inside double quotes, so every Field must come from
// a fixed set of known columns, never from user input.
//
// It returns ErrEmptyUpdate when changes is empty.
func PartialUpdate(changes Changes, columns ColumnMap) (SetClause, error) {
	if len(changes) == 0 {
		return SetClause{}, ErrEmptyUpdate
	}

	var b strings.Builder
	values := make([]Value, len(changes))
	for i, c := range changes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('"')
		b.WriteString(columns.Column(c.Field))
		b.WriteString(`"=$`)
		b.WriteString(strconv.Itoa(i + 1))
		values[i] = c.Value
	}

	return SetClause{SetCols: b.String(), Values: values}, nil
}

// Args returns Values as statement arguments.
func (c SetClause) Args() []any {
	args := make([]any, len(c.Values))
	for i, v := range c.Values {
		args[i] = v
	}
	return args
}

// Update renders a complete single-row UPDATE around the clause:
//
//	UPDATE <table> SET <SetCols> WHERE <keyColumn> = $<N> RETURNING <returning>
//
// with N = len(Values)+1. The returned args are Values followed by key.
// table, keyColumn and returning are written verbatim.
func (c SetClause) Update(table, keyColumn string, key any, returning string) (string, []any) {
	keyIdx := len(c.Values) + 1
	query := "UPDATE " + table +
		" SET " + c.SetCols +
		" WHERE " + keyColumn + " = $" + strconv.Itoa(keyIdx) +
		" RETURNING " + returning
	return query, append(c.Args(), key)
}

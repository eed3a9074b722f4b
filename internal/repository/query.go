package repository

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// conditions accumulates WHERE clauses with positional Postgres arguments.
type conditions struct {
	clauses []string
	args    []interface{}
}

// add appends a clause whose single placeholder is written as %d.
func (c *conditions) add(format string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(format, len(c.args)))
}

// addIn restricts column to ids when ids is non-nil. An empty non-nil slice matches nothing.
func (c *conditions) addIn(column string, ids []string) {
	if ids == nil {
		return
	}
	c.add(column+" = ANY($%d)", pq.Array(ids))
}

func (c *conditions) where(b *strings.Builder) {
	if len(c.clauses) == 0 {
		return
	}
	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(c.clauses, " AND "))
}

func (c *conditions) and(b *strings.Builder) {
	for _, clause := range c.clauses {
		b.WriteString(" AND ")
		b.WriteString(clause)
	}
}

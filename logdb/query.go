// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"fmt"
	"strings"
)

// clause is a conjunction of column conditions.
type clause struct {
	conds []string
	args  []interface{}
}

func (c *clause) cmp(column, op string, v interface{}) {
	c.conds = append(c.conds, column+" "+op+" ?")
	c.args = append(c.args, v)
}

func (c *clause) eq(column string, v interface{}) {
	c.cmp(column, "=", v)
}

func (c *clause) sql() string {
	if len(c.conds) == 0 {
		return "1"
	}
	return strings.Join(c.conds, " AND ")
}

// anyOf adds the disjunction of groups. No groups means no condition.
func (c *clause) anyOf(groups []clause) {
	if len(groups) == 0 {
		return
	}
	parts := make([]string, len(groups))
	for i := range groups {
		parts[i] = "(" + groups[i].sql() + ")"
		c.args = append(c.args, groups[i].args...)
	}
	c.conds = append(c.conds, "("+strings.Join(parts, " OR ")+")")
}

func (c *clause) blockRange(r *Range) {
	if r == nil {
		return
	}
	column := "blockNumber"
	if r.Unit == Time {
		column = "blockTime"
	}
	c.cmp(column, ">=", r.From)
	if r.To >= r.From {
		c.cmp(column, "<=", r.To)
	}
}

// selectStmt renders a filtered, ordered and paged select over one log table.
func selectStmt(table, columns, indexColumn string, where *clause, order Order, opts *Options) (string, []interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE %s", columns, table, where.sql())

	dir := "ASC"
	if order == DESC {
		dir = "DESC"
	}
	fmt.Fprintf(&b, " ORDER BY blockNumber %s, %s %s", dir, indexColumn, dir)

	args := where.args
	if opts != nil {
		b.WriteString(" LIMIT ?, ?")
		args = append(args, opts.Offset, opts.Limit)
	}
	return b.String(), args
}

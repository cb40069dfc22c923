package sqlmigrate

import (
	"strconv"
	"strings"
)

// Dialect adapts portable SQL written with '?' placeholders to a driver.
type Dialect struct {
	Name   string
	Driver string
	dollar bool
}

// SQLite targets modernc.org/sqlite.
var SQLite = Dialect{Name: "sqlite", Driver: "sqlite"}

// Postgres targets github.com/lib/pq.
var Postgres = Dialect{Name: "postgres", Driver: "postgres", dollar: true}

// Rebind rewrites '?' placeholders into the dialect's positional form.
// Placeholders inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if !d.dollar || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	quoted := false
	for _, r := range query {
		switch {
		case r == '\'':
			quoted = !quoted
			b.WriteRune(r)
		case r == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

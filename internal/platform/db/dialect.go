package db

import (
	"fmt"
	"strings"
)

// Dialect captures the SQL differences between the supported drivers.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// DialectFor maps a DB_DRIVER value to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "pgx":
		return Postgres, nil
	case "sqlite":
		return SQLite, nil
	}
	return 0, fmt.Errorf("db: unsupported driver %q", driver)
}

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

// Placeholder renders the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d == SQLite {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

// Placeholders renders count bind parameters starting at from, comma separated.
func (d Dialect) Placeholders(from, count int) string {
	ph := make([]string, count)
	for i := range ph {
		ph[i] = d.Placeholder(from + i)
	}
	return strings.Join(ph, ", ")
}

// Upsert renders an insert that replaces the row on a key conflict. Both
// drivers accept ON CONFLICT ... DO UPDATE with EXCLUDED.
func (d Dialect) Upsert(table string, key []string, cols []string) string {
	all := append(append([]string(nil), key...), cols...)
	set := make([]string, len(cols))
	for i, c := range cols {
		set[i] = fmt.Sprintf("%s = EXCLUDED.%s", c, c)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table,
		strings.Join(all, ", "),
		d.Placeholders(1, len(all)),
		strings.Join(key, ", "),
		strings.Join(set, ", "),
	)
}

package cache

import (
	"fmt"
	"strings"

	"fixture-trip-planner/internal/platform/db"
)

// uniqueKeys trims and de-duplicates lookup keys, dropping empty ones.
func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	uniq := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	return uniq
}

// inClause renders "column IN (...)" for SQLite or "column = ANY($n::text[])"
// for Postgres, with the matching bind arguments. from is the 1-based index of
// the first parameter.
func inClause(d db.Dialect, column string, from int, values []string) (string, []any) {
	if d == db.Postgres {
		return fmt.Sprintf("%s = ANY(%s::text[])", column, d.Placeholder(from)), []any{values}
	}

	// Only the placeholder structure is interpolated; all values remain parameterized.
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return fmt.Sprintf("%s IN (%s)", column, d.Placeholders(from, len(values))), args
}

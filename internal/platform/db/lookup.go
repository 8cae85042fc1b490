package db

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Lookup answers existence questions for validation rules
// (unique-in-collection and exists-in-collection).
type Lookup struct {
	q Querier
}

func NewLookup(q Querier) *Lookup {
	return &Lookup{q: q}
}

// Exists reports whether a row of table has column = value. When excludeID is
// non-empty the row with that id is ignored.
func (l *Lookup) Exists(ctx context.Context, table, column string, value interface{}, excludeID string) (bool, error) {
	if !identPattern.MatchString(table) || !identPattern.MatchString(column) {
		return false, fmt.Errorf("lookup: invalid identifier %q.%q", table, column)
	}

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, table, column)
	args := []interface{}{value}
	if excludeID != "" {
		query = fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND id::text <> $2)`, table, column)
		args = append(args, excludeID)
	}

	var exists bool
	if err := l.q.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("lookup %s.%s: %w", table, column, err)
	}
	return exists, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns s into an (I)LIKE pattern matching any value that
// contains s literally.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

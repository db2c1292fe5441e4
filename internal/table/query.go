package table

import (
	"context"
	"fmt"
	"strings"
)

// ResultLimit caps every search at the most recent rows by descending id.
const ResultLimit = 1000

// Search runs the per-column substring filters against the table and
// returns matching rows, newest id first, capped at ResultLimit.
//
// Blank filter values are ignored. An entirely blank filter set is the
// orchestrator's short-circuit ("do not query"), so reaching Search with one
// is a bug and errors loudly rather than returning everything. Filter keys
// are validated against the schema before they are spliced into SQL; the
// values themselves always travel as bound parameters.
func (s *Service) Search(ctx context.Context, filters map[string]string) ([]Row, error) {
	schema, err := s.Schema(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.EnsureConnected(ctx)
	if err != nil {
		return nil, err
	}

	var (
		predicates []string
		args       []any
	)
	// Walk the schema, not the map, for deterministic predicate order.
	for _, col := range schema {
		value, ok := filters[col.Name]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		if col.Name == s.cfg.IDColumn {
			// The id column is hidden from the filter form; reject it
			// here too in case a request fabricates it.
			return nil, &QueryError{Op: "search", Err: fmt.Errorf("column %q is not searchable", col.Name)}
		}
		predicates = append(predicates,
			fmt.Sprintf("LOWER(CAST(%s AS VARCHAR)) LIKE %s", col.Name, a.Placeholder(len(args)+1)))
		args = append(args, "%"+strings.ToLower(value)+"%")
	}

	for name := range filters {
		if strings.TrimSpace(filters[name]) == "" {
			continue
		}
		if _, ok := columnType(schema, name); !ok {
			return nil, &QueryError{Op: "search", Err: fmt.Errorf("unknown column %q", name)}
		}
	}

	if len(predicates) == 0 {
		return nil, fmt.Errorf("search invoked with no non-empty filters")
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY %s DESC LIMIT %d",
		s.tableRef(), strings.Join(predicates, " AND "), s.cfg.IDColumn, ResultLimit)

	rows, err := a.Query(ctx, query, args...)
	if err != nil {
		return nil, &QueryError{Op: "search", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var results []Row
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, &QueryError{Op: "search", Err: err}
		}
		results = append(results, normalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Op: "search", Err: err}
	}

	s.logger.Debug("search", "filters", len(predicates), "rows", len(results))
	return results, nil
}

// normalizeRow converts driver byte slices into strings so rows compare and
// render cleanly.
func normalizeRow(row map[string]any) Row {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	return row
}

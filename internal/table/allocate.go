package table

import (
	"context"
	"fmt"
)

// NextID computes the next surrogate key as max(id)+1, returning 1 only for
// a genuinely empty table. A failed query is an error, never a silent 1.
//
// Allocation is not transactionally safe: two concurrent callers can be
// handed the same value.
func (s *Service) NextID(ctx context.Context) (int64, error) {
	if _, err := s.Schema(ctx); err != nil {
		return 0, err
	}
	a, err := s.EnsureConnected(ctx)
	if err != nil {
		return 0, err
	}

	// COALESCE handles the empty table, where MAX(id) is NULL.
	query := fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) + 1 FROM %s", s.cfg.IDColumn, s.tableRef())

	rows, err := a.Query(ctx, query)
	if err != nil {
		return 0, &QueryError{Op: "allocate", Err: err}
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, &QueryError{Op: "allocate", Err: err}
		}
		return 0, &QueryError{Op: "allocate", Err: fmt.Errorf("no row returned")}
	}

	var next int64
	if err := rows.Scan(&next); err != nil {
		return 0, &QueryError{Op: "allocate", Err: err}
	}
	return next, nil
}

package query

import (
	"context"
	"time"
)

// Request is either a literal statement (no Args) or a parameterized one.
type Request struct {
	SQL  string
	Args []any
}

type Result struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}

// Records pairs each row with the column names, in column order.
func (r Result) Records() []map[string]any {
	records := make([]map[string]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		record := make(map[string]any, len(r.Columns))
		for i, column := range r.Columns {
			if i < len(row) {
				record[column] = row[i]
			}
		}
		records = append(records, record)
	}
	return records
}

type Engine interface {
	Execute(ctx context.Context, request Request) (Result, error)
}

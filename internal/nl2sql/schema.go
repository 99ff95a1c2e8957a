package nl2sql

import (
	"context"
	"fmt"
	"strings"

	"github.com/smartcampus/smartcampus/internal/campus"
)

// ColumnReader returns column names per table for the requested tables.
// Tables missing from the database are simply absent from the result.
type ColumnReader interface {
	ColumnsByTable(ctx context.Context, tables []string) (map[string][]string, error)
}

type SchemaDescriber struct {
	Reader ColumnReader
}

// Describe renders the allow-listed tables only, never the full database schema.
func (d SchemaDescriber) Describe(ctx context.Context) (string, error) {
	if d.Reader == nil {
		return "", fmt.Errorf("column reader is required")
	}
	allowed := campus.AllowedTables()
	columns, err := d.Reader.ColumnsByTable(ctx, allowed)
	if err != nil {
		return "", fmt.Errorf("read schema columns: %w", err)
	}
	return FormatSchema(allowed, columns), nil
}

func FormatSchema(tables []string, columns map[string][]string) string {
	var b strings.Builder
	for _, table := range tables {
		cols, ok := columns[table]
		if !ok {
			continue
		}
		b.WriteString("\nTABLE ")
		b.WriteString(table)
		b.WriteString(":\n")
		for _, col := range cols {
			b.WriteString("  - ")
			b.WriteString(col)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

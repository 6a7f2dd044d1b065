package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SourceOptions describes the table a Source reads documents from.
type SourceOptions struct {
	// Table is the name of the table holding the documents.
	Table string
	// TablePrefix is prepended to Table, the way collection prefixes are
	// applied to every table of an application.
	TablePrefix string
	// IDColumn holds the document id.
	IDColumn string
	// DataColumn holds the document encoded as JSON text or blob.
	DataColumn string
	// OrderBy is the column rows are returned in. Leave empty for tables
	// created WITHOUT ROWID.
	OrderBy string
}

// DefaultSourceOptions returns the options for a "documents" table with an
// "id" and a "data" column, read in insertion order.
func DefaultSourceOptions() *SourceOptions {
	return &SourceOptions{
		Table:      "documents",
		IDColumn:   "id",
		DataColumn: "data",
		OrderBy:    "rowid",
	}
}

// quoteIdentifier safely quotes an identifier, such as a table or column name,
// to prevent SQL injection and to handle names that might be keywords or contain
// special characters.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// tableName returns the unquoted table name with the prefix applied.
func (o *SourceOptions) tableName() string {
	return o.TablePrefix + o.Table
}

// selectSQL builds the statement used to stream the documents.
func (o *SourceOptions) selectSQL() string {
	stmt := fmt.Sprintf("SELECT %s, %s FROM %s",
		quoteIdentifier(o.IDColumn),
		quoteIdentifier(o.DataColumn),
		quoteIdentifier(o.tableName()))
	switch {
	case o.OrderBy == "":
	case strings.EqualFold(o.OrderBy, "rowid"):
		stmt += " ORDER BY rowid"
	default:
		stmt += " ORDER BY " + quoteIdentifier(o.OrderBy)
	}
	return stmt
}

// TableExists checks if the configured table exists in the database.
func (s *Source) TableExists(ctx context.Context) (bool, error) {
	query := "SELECT name FROM sqlite_master WHERE type='table' AND name = ?;"

	var name string
	err := s.runner.QueryRowContext(ctx, query, s.options.tableName()).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up table %s: %w", s.options.tableName(), err)
	}
	return true, nil
}

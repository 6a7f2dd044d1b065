// Package sqlite reads documents stored as JSON in a SQLite table and feeds
// them to the query engine. Rows are streamed from the database and filtered
// in process; no part of a query is translated to SQL.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/asaidimu/go-sift/core/collection"
	"github.com/asaidimu/go-sift/core/query"
	"github.com/asaidimu/go-sift/core/value"
	"go.uber.org/zap"
)

// dbRunner abstracts the read methods shared by *sql.DB, *sql.Tx and
// *sql.Conn, so a Source can read inside or outside a transaction.
type dbRunner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Source streams documents out of a SQLite table.
type Source struct {
	runner  dbRunner
	options *SourceOptions
	logger  *zap.Logger
}

// NewSource creates a Source reading through db, which may be a *sql.DB, a
// *sql.Tx or a *sql.Conn. Nil options select DefaultSourceOptions.
func NewSource(db dbRunner, options *SourceOptions, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = DefaultSourceOptions()
	}
	return &Source{
		runner:  db,
		options: options,
		logger:  logger,
	}
}

// Documents streams every row of the table as a Document. Iteration stops
// after the first error, which is yielded with a zero Document. The
// underlying rows are closed when the loop ends, including on break.
func (s *Source) Documents(ctx context.Context) iter.Seq2[collection.Document, error] {
	return func(yield func(collection.Document, error) bool) {
		stmt := s.options.selectSQL()
		rows, err := s.runner.QueryContext(ctx, stmt)
		if err != nil {
			yield(collection.Document{}, fmt.Errorf("failed to query %s: %w", s.options.tableName(), err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			doc, err := readRow(rows)
			if err != nil {
				yield(collection.Document{}, err)
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(collection.Document{}, fmt.Errorf("failed to read %s: %w", s.options.tableName(), err))
		}
	}
}

// readRow scans the id and data columns of the current row and decodes the
// data column. A NULL data column reads as a Null document.
func readRow(rows *sql.Rows) (collection.Document, error) {
	var id string
	var data []byte
	if err := rows.Scan(&id, &data); err != nil {
		return collection.Document{}, fmt.Errorf("failed to scan row: %w", err)
	}
	if data == nil {
		return collection.Document{ID: id, Value: value.Null{}}, nil
	}

	v, err := value.Unmarshal(data)
	if err != nil {
		return collection.Document{}, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	return collection.Document{ID: id, Value: v}, nil
}

// Query returns the documents of the table matching q, with its offset and
// limit applied. Reading stops as soon as the limit is reached.
func (s *Source) Query(ctx context.Context, q *query.Query) ([]collection.Document, error) {
	var readErr error
	rows := func(yield func(collection.Document) bool) {
		for doc, err := range s.Documents(ctx) {
			if err != nil {
				readErr = err
				return
			}
			if !yield(doc) {
				return
			}
		}
	}

	var out []collection.Document
	for doc := range query.Select(rows, documentView, q) {
		out = append(out, doc)
	}
	if readErr != nil {
		s.logger.Error("Query failed", zap.String("table", s.options.tableName()), zap.Error(readErr))
		return nil, readErr
	}

	s.logger.Debug("Query executed",
		zap.String("table", s.options.tableName()),
		zap.String("query", q.String()),
		zap.Int("count", len(out)))
	return out, nil
}

// LoadInto inserts every document of the table into c and returns how many
// were loaded. Rows holding something other than a JSON object are skipped
// with a warning. Source ids are not kept: c assigns its own.
func (s *Source) LoadInto(ctx context.Context, c *collection.Collection) (int, error) {
	var batch []value.Value
	for doc, err := range s.Documents(ctx) {
		if err != nil {
			return 0, err
		}
		if _, ok := doc.Value.(value.Map); !ok {
			s.logger.Warn("Skipping row that is not a JSON object", zap.String("id", doc.ID))
			continue
		}
		batch = append(batch, doc.Value)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	if _, err := c.Insert(batch...); err != nil {
		return 0, fmt.Errorf("failed to load %s into collection %q: %w", s.options.tableName(), c.Name(), err)
	}
	s.logger.Info("Loaded documents", zap.String("table", s.options.tableName()), zap.Int("count", len(batch)))
	return len(batch), nil
}

func documentView(d collection.Document) value.Value { return d.Value }

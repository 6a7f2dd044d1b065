package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/asaidimu/go-sift/core/query"
	"github.com/asaidimu/go-sift/core/value"
	"github.com/asaidimu/go-sift/sqlite"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// QueryOptions holds the flags of the query command.
type QueryOptions struct {
	File   string
	SQLite string
	Table  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <query-string>",
		Short: "Print the documents matching a query string",
		Long: `Evaluate a query string over a set of documents and print the matching
ones as JSON lines.

Documents are read from --file, or from standard input when no file is given,
as a JSON array, JSON lines or a YAML sequence. With --sqlite they are read
from the JSON column of a SQLite table instead.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), rootOpts, opts, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "file to read documents from (default stdin)")
	cmd.Flags().StringVar(&opts.SQLite, "sqlite", "", "SQLite database to read documents from")
	cmd.Flags().StringVar(&opts.Table, "table", sqlite.DefaultSourceOptions().Table, "table holding the documents, with --sqlite")

	return cmd
}

func runQuery(ctx context.Context, rootOpts *RootOptions, opts *QueryOptions, qs string, in io.Reader, out io.Writer) error {
	logger := rootOpts.log()

	q, err := query.Parse(qs)
	if err != nil {
		return err
	}
	if q.Limit == nil && rootOpts.DefaultLimit > 0 {
		q.Limit = query.Uint64Ptr(rootOpts.DefaultLimit)
	}
	logger.Debug("Running query", zap.String("query", q.String()))

	var docs []value.Value
	if opts.SQLite != "" {
		docs, err = queryDatabase(ctx, opts, q, logger)
	} else {
		docs, err = queryDocuments(rootOpts.Format, opts.File, in, q)
	}
	if err != nil {
		return err
	}
	return writeDocuments(out, docs)
}

func queryDocuments(format, path string, in io.Reader, q *query.Query) ([]value.Value, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	docs, err := readDocuments(in, resolveFormat(format, path))
	if err != nil {
		return nil, err
	}
	return slices.Collect(query.Select(slices.Values(docs), query.Identity, q)), nil
}

func queryDatabase(ctx context.Context, opts *QueryOptions, q *query.Query, logger *zap.Logger) ([]value.Value, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", opts.SQLite))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", opts.SQLite, err)
	}
	defer db.Close()

	sourceOpts := sqlite.DefaultSourceOptions()
	sourceOpts.Table = opts.Table
	src := sqlite.NewSource(db, sourceOpts, logger)

	exists, err := src.TableExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("table %q not found in %s", opts.Table, opts.SQLite)
	}

	found, err := src.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	docs := make([]value.Value, len(found))
	for i, doc := range found {
		docs[i] = doc.Value
	}
	return docs, nil
}

// writeDocuments prints docs as JSON lines.
func writeDocuments(w io.Writer, docs []value.Value) error {
	for _, doc := range docs {
		data, err := value.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode document: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return err
		}
	}
	return nil
}

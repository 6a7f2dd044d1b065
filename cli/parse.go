package cli

import (
	"fmt"
	"io"

	"github.com/asaidimu/go-sift/core/query"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <query-string>",
		Short: "Parse a query string and print its expression tree",
		Long: `Parse a query string and print the resulting filter expression together
with its limit and offset. Nothing is evaluated.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args[0], cmd.OutOrStdout())
		},
	}

	return cmd
}

func runParse(opts *RootOptions, qs string, w io.Writer) error {
	q, err := query.Parse(qs)
	if err != nil {
		opts.log().Debug("Failed to parse query", zap.String("query", qs), zap.Error(err))
		return err
	}
	return writeQuery(w, q)
}

func writeQuery(w io.Writer, q *query.Query) error {
	filter := "none"
	if q.Filter != nil {
		filter = q.Filter.String()
	}
	_, err := fmt.Fprintf(w, "filter: %s\nlimit: %s\noffset: %s\n", filter, optional(q.Limit), optional(q.Offset))
	return err
}

func optional(n *uint64) string {
	if n == nil {
		return "none"
	}
	return fmt.Sprint(*n)
}

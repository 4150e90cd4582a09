package main

import (
	"github.com/spf13/cobra"

	queryuc "github.com/kailas-cloud/rigel/internal/usecase/query"
)

var (
	listFilters []string
	listQuery   string
	listLimit   int
)

var listCmd = &cobra.Command{
	Use:   "list <schema>",
	Short: "List items of a schema",
	Long: `List items of a schema in index order.

Filters are field expressions and may be repeated:
  field:value        equality
  field:a|b          membership
  field:[lo TO hi]   inclusive range, * for an open bound
  field:*            attribute present
  -field:value       negation`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			items, err := s.svc.List(cmd.Context(), args[0], queryuc.ListParams{
				Filters: listFilters,
				Query:   listQuery,
				Limit:   listLimit,
			})
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), items)
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringArrayVarP(&listFilters, "filter", "f", nil, "Filter expression (repeatable)")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Raw query text in the index dialect")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Maximum number of items (default: client max rows)")
}

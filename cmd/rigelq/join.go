package main

import (
	"github.com/spf13/cobra"

	queryuc "github.com/kailas-cloud/rigel/internal/usecase/query"
)

var (
	joinFrom        string
	joinTo          string
	joinFromFilters []string
	joinFilters     []string
	joinLimit       int
)

var joinCmd = &cobra.Command{
	Use:   "join <schema>",
	Short: "List items whose --to field matches a --from value of the origin documents",
	Long: `Run a two-step join. The first request reads the --from attribute of every
document matching --from-filter, across all content types. The second lists
items of <schema> whose --to attribute equals one of the collected values.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			items, err := s.svc.Join(cmd.Context(), args[0], queryuc.JoinParams{
				From:        joinFrom,
				To:          joinTo,
				FromFilters: joinFromFilters,
				Filters:     joinFilters,
				Limit:       joinLimit,
			})
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), items)
		})
	},
}

func init() {
	rootCmd.AddCommand(joinCmd)
	joinCmd.Flags().StringVar(&joinFrom, "from", "", "Origin attribute holding the join keys")
	joinCmd.Flags().StringVar(&joinTo, "to", "", "Target attribute matched against the keys")
	joinCmd.Flags().StringArrayVar(&joinFromFilters, "from-filter", nil, "Origin filter expression (repeatable)")
	joinCmd.Flags().StringArrayVarP(&joinFilters, "filter", "f", nil, "Target filter expression (repeatable)")
	joinCmd.Flags().IntVarP(&joinLimit, "limit", "n", 0, "Maximum number of items")
	_ = joinCmd.MarkFlagRequired("from")
	_ = joinCmd.MarkFlagRequired("to")
}

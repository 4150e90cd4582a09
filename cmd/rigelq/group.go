package main

import (
	"github.com/spf13/cobra"

	queryuc "github.com/kailas-cloud/rigel/internal/usecase/query"
)

var (
	groupFilters  []string
	groupQuery    string
	groupLimit    int
	groupPerGroup int
)

var groupCmd = &cobra.Command{
	Use:   "group <schema> <field>",
	Short: "List items of a schema bucketed by a field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			groups, err := s.svc.Group(cmd.Context(), args[0], queryuc.GroupParams{
				Field:    args[1],
				PerGroup: groupPerGroup,
				Filters:  groupFilters,
				Query:    groupQuery,
				Limit:    groupLimit,
			})
			if err != nil {
				return err
			}
			return printGroups(cmd.OutOrStdout(), groups)
		})
	},
}

func init() {
	rootCmd.AddCommand(groupCmd)
	groupCmd.Flags().StringArrayVarP(&groupFilters, "filter", "f", nil, "Filter expression (repeatable)")
	groupCmd.Flags().StringVarP(&groupQuery, "query", "q", "", "Raw query text in the index dialect")
	groupCmd.Flags().IntVarP(&groupLimit, "limit", "n", 0, "Maximum number of groups")
	groupCmd.Flags().IntVar(&groupPerGroup, "per-group", 0, "Maximum items per group (default 1)")
}

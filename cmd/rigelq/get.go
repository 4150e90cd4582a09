package main

import (
	"github.com/spf13/cobra"
)

var getForce bool

var getCmd = &cobra.Command{
	Use:   "get <schema> <id>",
	Short: "Look up one item by identifier",
	Long: `Look up one item by identifier. The lookup ignores the schema's type scope;
an item whose discriminator names another content type is reported as not found
unless --force builds it with the schema's default constructor.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			item, err := s.svc.Get(cmd.Context(), args[0], args[1], getForce)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), toJSON(item))
			}
			writeItem(cmd.OutOrStdout(), item, "")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().BoolVar(&getForce, "force", false, "Build the item with the schema's default constructor")
}

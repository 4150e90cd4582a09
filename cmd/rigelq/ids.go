package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var idsForce bool

var idsCmd = &cobra.Command{
	Use:   "ids <schema> <id>...",
	Short: "Look up several items by identifier in one request",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			ids := args[1:]
			found, err := s.svc.GetMany(cmd.Context(), args[0], ids, idsForce)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				out := make(map[string]*itemJSON, len(found))
				for id, op := range found {
					if item, ok := op.Get(); ok {
						j := toJSON(item)
						out[id] = &j
					} else {
						out[id] = nil
					}
				}
				return writeJSON(w, out)
			}
			// requested order, not map order
			for _, id := range ids {
				item, ok := found[id].Get()
				if !ok {
					fmt.Fprintf(w, "%s: not found\n", id)
					continue
				}
				writeItem(w, item, "")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(idsCmd)
	idsCmd.Flags().BoolVar(&idsForce, "force", false, "Build items with the schema's default constructor")
}

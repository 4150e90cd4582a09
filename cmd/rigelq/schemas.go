package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "List the configured schemas and their fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withSession(cmd, func(s *session) error {
			infos := s.svc.Schemas()
			w := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(w, infos)
			}
			for _, info := range infos {
				fmt.Fprintf(w, "%s (id: %s", info.Name, info.ID)
				if info.Discriminator != "" {
					fmt.Fprintf(w, ", %s: %s", info.Discriminator, strings.Join(info.Variants, "|"))
				}
				fmt.Fprintln(w, ")")
				for _, f := range info.Fields {
					fmt.Fprintf(w, "  %s %s\n", f.Name, f.Type)
				}
			}
			return nil
		})
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check index connectivity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withSession(cmd, func(s *session) error {
			if err := s.svc.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(schemasCmd)
	rootCmd.AddCommand(pingCmd)
}

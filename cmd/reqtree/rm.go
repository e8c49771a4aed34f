package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <collection> <path>",
		Short: "Remove a request from a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			idx, err := s.locate(args[0], args[1])
			if err != nil {
				return err
			}
			s.app.Select(idx)
			name := s.app.SelectedRequest().Name
			if _, err := s.app.RemoveRequest(idx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %q from %q\n", name, s.tree.Collections()[idx.Collection].Name)
			return nil
		},
	}
}

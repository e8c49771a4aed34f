package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/reqtree/internal/request"
)

func newAuthCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Inspect or edit a request's authentication",
	}
	cmd.AddCommand(newAuthNextCmd(opts), newAuthSetCmd(opts))
	return cmd
}

func newAuthNextCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "next <collection> <path>",
		Short: "Cycle the auth variant: none, basic, bearer",
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
			s.app.CycleAuth()
			printAuth(cmd.OutOrStdout(), s.app.SelectedRequest().Auth)
			return nil
		},
	}
}

func newAuthSetCmd(opts *rootOptions) *cobra.Command {
	var user, password, token string
	cmd := &cobra.Command{
		Use:   "set <collection> <path>",
		Short: "Set auth credentials; fields not matching the current variant are ignored",
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
			flags := cmd.Flags()
			if flags.Changed("user") {
				s.app.SetBasicUsername(user)
			}
			if flags.Changed("password") {
				s.app.SetBasicPassword(password)
			}
			if flags.Changed("token") {
				s.app.SetBearerToken(token)
			}
			printAuth(cmd.OutOrStdout(), s.app.SelectedRequest().Auth)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "basic auth username")
	cmd.Flags().StringVar(&password, "password", "", "basic auth password")
	cmd.Flags().StringVar(&token, "token", "", "bearer token")
	return cmd
}

func printAuth(w io.Writer, a request.Auth) {
	switch a.Kind {
	case request.AuthBasic:
		fmt.Fprintf(w, "auth: basic user=%q\n", a.Username)
	case request.AuthBearer:
		fmt.Fprintf(w, "auth: bearer token=%q\n", a.Token)
	default:
		fmt.Fprintln(w, "auth: none")
	}
}

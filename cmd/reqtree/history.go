package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/reqtree/internal/errdef"
	"github.com/unkn0wn-root/reqtree/internal/history"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		limit  int
		wipe   bool
		name   string
		remove int64
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			if wipe {
				if err := s.history.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
				return nil
			}
			if cmd.Flags().Changed("delete") {
				ok, err := s.history.Delete(remove)
				if err != nil {
					return err
				}
				if !ok {
					return errdef.New(errdef.CodeHistory, "no history entry %d", remove)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted entry %d\n", remove)
				return nil
			}

			var entries []history.Entry
			if name != "" {
				entries, err = s.history.ByName(name)
			} else {
				entries, err = s.history.Entries(limit)
			}
			if err != nil {
				return err
			}
			renderHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show (0 for all)")
	cmd.Flags().BoolVar(&wipe, "clear", false, "delete every entry")
	cmd.Flags().StringVar(&name, "name", "", "only show entries recorded under this name")
	cmd.Flags().Int64Var(&remove, "delete", 0, "delete the entry with this id")
	cmd.MarkFlagsMutuallyExclusive("clear", "delete", "name")
	return cmd
}

func renderHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, folderStyle.Render("no imports yet"))
		return
	}
	for _, e := range entries {
		when := pathStyle.Render(fmt.Sprintf("#%-4d %s", e.ID, e.ImportedAt.Local().Format("2006-01-02 15:04:05")))
		switch e.Kind {
		case history.KindCurl:
			fmt.Fprintf(w, "%s %s %s %s -> %s\n",
				when,
				methodStyle(requestMethod(e.Method)).Render(padRight(e.Method, methodWidth)),
				e.Name,
				pathStyle.Render(e.URL),
				collectionStyle.Render(e.Collection),
			)
		default:
			fmt.Fprintf(w, "%s %s %s %s\n",
				when,
				padRight("ENV", methodWidth),
				e.Name,
				pathStyle.Render(e.Source),
			)
		}
	}
}

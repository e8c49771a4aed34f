package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/reqtree/internal/app"
	"github.com/unkn0wn-root/reqtree/internal/errdef"
	"github.com/unkn0wn-root/reqtree/internal/filesvc"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import requests or environments",
	}
	cmd.AddCommand(newImportCurlCmd(opts), newImportEnvCmd(opts))
	return cmd
}

func newImportCurlCmd(opts *rootOptions) *cobra.Command {
	var (
		target   string
		fromClip bool
		clipName string
	)
	cmd := &cobra.Command{
		Use:   "curl [file]",
		Short: "Import the first curl command of a file into a collection",
		Args: func(cmd *cobra.Command, args []string) error {
			if fromClip {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			var done tea.Cmd
			if fromClip {
				done, err = s.app.ImportCurlClipboard(clipName, target)
			} else {
				done, err = s.app.ImportCurlFile(args[0], target)
			}
			if err != nil {
				return err
			}

			msg, _ := done().(app.CollectionChangedMsg)
			info := s.tree.Collections()[msg.Collection]
			verb := "added to"
			if msg.Created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s collection %q (%s)\n", verb, info.Name, info.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "collection", "", "collection to append to (created when missing)")
	cmd.Flags().BoolVar(&fromClip, "clipboard", false, "read the command from the clipboard")
	cmd.Flags().StringVar(&clipName, "name", "clipboard", "request name when importing from the clipboard")
	return cmd
}

func newImportEnvCmd(opts *rootOptions) *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "env <file|dir>...",
		Short: "Load .env.<label> files and list their variables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			paths, err := expandEnvArgs(args, recursive)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, path := range paths {
				c, err := s.app.ImportEnvironmentFile(path)
				if err != nil {
					return err
				}
				msg, _ := c().(app.EnvironmentAddedMsg)
				env := msg.Environment
				fmt.Fprintf(out, "environment %q: %d values\n", env.Name, len(env.Values))
				for _, key := range sortedKeys(env.Values) {
					fmt.Fprintf(out, "  %s\n", key)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "walk directories recursively")
	return cmd
}

// expandEnvArgs replaces directory arguments with the environment files they
// contain. Plain files pass through unchanged.
func expandEnvArgs(args []string, recursive bool) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := filesvc.ListImportFiles(arg, recursive, filesvc.KindEnvironment)
		if err != nil {
			return nil, errdef.Wrap(errdef.CodeFilesystem, err, "list %s", arg)
		}
		if len(entries) == 0 {
			return nil, errdef.New(errdef.CodeEnvironment, "no environment files in %s", arg)
		}
		for _, e := range entries {
			paths = append(paths, e.Path)
		}
	}
	return paths, nil
}

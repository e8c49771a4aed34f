package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/reqtree/internal/collection"
	"github.com/unkn0wn-root/reqtree/internal/request"
)

var (
	collectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	folderStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	pathStyle       = lipgloss.NewStyle().Faint(true)
	methodStyles    = map[request.Method]lipgloss.Style{
		request.MethodGet:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		request.MethodPost:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		request.MethodPut:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		request.MethodDelete: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
)

const methodWidth = 7

func newTreeCmd(opts *rootOptions) *cobra.Command {
	var maxWidth int
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print every collection and its requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()
			renderTree(cmd.OutOrStdout(), s.tree, maxWidth)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxWidth, "max-width", 0, "truncate lines to this many cells (0 disables)")
	return cmd
}

// renderTree prints one line per collection, folder and request. Lines wider
// than maxWidth cells are cut with an ellipsis.
func renderTree(w io.Writer, tree *collection.Tree, maxWidth int) {
	line := func(format string, args ...any) {
		s := fmt.Sprintf(format, args...)
		if maxWidth > 0 {
			s = ansi.Truncate(s, maxWidth, "…")
		}
		fmt.Fprintln(w, s)
	}

	infos := tree.Collections()
	if len(infos) == 0 {
		fmt.Fprintln(w, folderStyle.Render("no collections"))
		return
	}
	for _, info := range infos {
		line("%s %s",
			collectionStyle.Render(fmt.Sprintf("[%d] %s", info.Index, info.Name)),
			pathStyle.Render(fmt.Sprintf("(%d requests)", info.Requests)),
		)
		records := tree.Records()
		tree.Walk(info.Index, func(depth int, idx collection.Index, item *collection.Item) {
			indent := strings.Repeat("  ", depth+1)
			label := pathLabel(idx)
			if item.IsFolder() {
				line("%s%s %s", indent, pathStyle.Render(label), folderStyle.Render(item.Name+"/"))
				return
			}
			_ = records.Read(item.Record, func(r request.Request) {
				line("%s%s %s %s %s",
					indent,
					pathStyle.Render(label),
					methodStyle(r.Method).Render(padRight(r.Method.String(), methodWidth)),
					item.Name,
					pathStyle.Render(r.FullURL()),
				)
			})
		})
	}
}

func methodStyle(m request.Method) lipgloss.Style {
	if st, ok := methodStyles[m]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

func requestMethod(raw string) request.Method {
	m, err := request.ParseMethod(raw)
	if err != nil {
		return request.MethodGet
	}
	return m
}

// padRight pads s with spaces to width terminal cells.
func padRight(s string, width int) string {
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func pathLabel(idx collection.Index) string {
	parts := make([]string, 0, len(idx.Path))
	for _, p := range idx.Path {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, "/")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

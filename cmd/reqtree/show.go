package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/quick"
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/reqtree/internal/request"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	var envFiles []string
	var envName string
	var highlight bool
	cmd := &cobra.Command{
		Use:   "show <collection> <path>",
		Short: "Print a request with environment variables resolved",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			for _, path := range envFiles {
				if _, err := s.app.LoadEnvironmentFile(path); err != nil {
					return err
				}
			}
			idx, err := s.locate(args[0], args[1])
			if err != nil {
				return err
			}
			s.app.Select(idx)
			req, err := s.app.ResolveSelected(envName)
			if err != nil {
				return err
			}
			printRequest(cmd.OutOrStdout(), req, highlight)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&envFiles, "env-file", nil, "environment file to load (repeatable)")
	cmd.Flags().StringVar(&envName, "env", "", "environment to resolve against (default: all loaded, in order)")
	cmd.Flags().BoolVar(&highlight, "highlight", false, "syntax highlight the body")
	return cmd
}

func printRequest(out io.Writer, req request.Request, highlight bool) {
	fmt.Fprintf(out, "%s %s\n", req.Method, req.FullURL())
	for _, h := range req.Headers {
		if h.Enabled {
			fmt.Fprintf(out, "%s: %s\n", h.Key, h.Value)
		}
	}
	if name, value, ok := req.Auth.Header(); ok {
		fmt.Fprintf(out, "%s: %s\n", name, value)
	}
	if req.Body.Text == "" {
		return
	}
	fmt.Fprintln(out)
	if highlight {
		if err := quick.Highlight(out, req.Body.Text, bodyLexer(contentType(req)), "terminal256", "monokai"); err == nil {
			fmt.Fprintln(out)
			return
		}
	}
	fmt.Fprintln(out, req.Body.Text)
}

// contentType is the last enabled Content-Type header, or the type implied by
// the body kind when no header is set.
func contentType(req request.Request) string {
	ct := ""
	for _, h := range req.Headers {
		if h.Enabled && strings.EqualFold(h.Key, "Content-Type") {
			ct = h.Value
		}
	}
	if ct == "" {
		ct = req.Body.ContentType()
	}
	return ct
}

// bodyLexer maps a content type to a chroma lexer name. An empty name lets
// chroma guess from the body.
func bodyLexer(contentType string) string {
	mt, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	mt = strings.TrimSpace(mt)
	switch {
	case strings.HasSuffix(mt, "json"):
		return "json"
	case strings.HasSuffix(mt, "xml"):
		return "xml"
	case mt == "text/html":
		return "html"
	case strings.HasSuffix(mt, "yaml"):
		return "yaml"
	case strings.HasSuffix(mt, "javascript"):
		return "javascript"
	case mt == "application/x-www-form-urlencoded":
		return "text"
	}
	return ""
}

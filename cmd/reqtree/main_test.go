package main

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/reqtree/internal/request"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestImportTreeAndAuthFlow(t *testing.T) {
	dir := t.TempDir()
	curlPath := filepath.Join(dir, "users.curl")
	require.NoError(t, os.WriteFile(curlPath,
		[]byte(`curl -H 'Authorization: Bearer abc' -H 'X-Env: {{stage}}' 'https://api.test/users?page=2'`), 0o644))
	envPath := filepath.Join(dir, "demo.env.test")
	require.NoError(t, os.WriteFile(envPath, []byte("stage=qa\n"), 0o644))

	out := mustRun(t, "--config", dir, "import", "curl", curlPath, "--collection", "demo")
	require.Contains(t, out, `created collection "demo"`)
	require.FileExists(t, filepath.Join(dir, "collections", "demo.yaml"))

	out = mustRun(t, "--config", dir, "tree")
	require.Contains(t, out, "demo")
	require.Contains(t, out, "users")
	require.Contains(t, out, "https://api.test/users?page=2")

	out = mustRun(t, "--config", dir, "auth", "next", "demo", "0")
	require.Contains(t, out, "auth: none")
	out = mustRun(t, "--config", dir, "auth", "next", "0", "0")
	require.Contains(t, out, `auth: basic user=""`)

	out = mustRun(t, "--config", dir, "auth", "set", "demo", "0", "--user", "alice", "--password", "pw", "--token", "ignored")
	require.Contains(t, out, `auth: basic user="alice"`)

	out = mustRun(t, "--config", dir, "show", "demo", "0", "--env-file", envPath, "--env", "demo.test")
	require.Contains(t, out, "GET https://api.test/users?page=2")
	require.Contains(t, out, "X-Env: qa")
	require.Contains(t, out, "Authorization: Basic "+base64.StdEncoding.EncodeToString([]byte("alice:pw")))
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "--config", dir, "import", "curl", filepath.Join(dir, "missing.curl"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.curl")
	require.NoError(t, os.WriteFile(bad, []byte("curl 'https://unterminated"), 0o644))
	_, err = run(t, "--config", dir, "import", "curl", bad)
	require.Error(t, err)

	_, err = run(t, "--config", dir, "auth", "next", "nope", "0")
	require.Error(t, err)

	_, err = run(t, "--config", dir, "import", "env", filepath.Join(dir, "x.env.dev"))
	require.Error(t, err)

	out := mustRun(t, "--config", dir, "tree")
	require.Contains(t, out, "no collections")
}

func TestHistoryRecordsImports(t *testing.T) {
	dir := t.TempDir()
	curlPath := filepath.Join(dir, "orders.sh")
	require.NoError(t, os.WriteFile(curlPath,
		[]byte(`curl -X DELETE https://api.test/orders/9`), 0o644))
	envPath := filepath.Join(dir, ".env.local")
	require.NoError(t, os.WriteFile(envPath, []byte("k=v\n"), 0o644))

	out := mustRun(t, "--config", dir, "history")
	require.Contains(t, out, "no imports yet")

	mustRun(t, "--config", dir, "import", "curl", curlPath)
	mustRun(t, "--config", dir, "import", "env", envPath)
	require.FileExists(t, filepath.Join(dir, "history.db"))

	out = mustRun(t, "--no-color", "--config", dir, "history")
	require.Contains(t, out, "DELETE")
	require.Contains(t, out, "https://api.test/orders/9 -> orders")
	require.Contains(t, out, "local")

	out = mustRun(t, "--no-color", "--config", dir, "history", "-n", "1")
	require.NotContains(t, out, "DELETE")

	out = mustRun(t, "--config", dir, "history", "--clear")
	require.Contains(t, out, "history cleared")
	out = mustRun(t, "--config", dir, "history")
	require.Contains(t, out, "no imports yet")
}

func TestTreeMaxWidthAndHighlightedShow(t *testing.T) {
	dir := t.TempDir()
	curlPath := filepath.Join(dir, "create.curl")
	require.NoError(t, os.WriteFile(curlPath,
		[]byte(`curl --json '{"name":"widget"}' https://api.test/a/very/long/path/for/widgets`), 0o644))
	mustRun(t, "--config", dir, "import", "curl", curlPath)

	out := mustRun(t, "--no-color", "--config", dir, "tree", "--max-width", "24")
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		require.LessOrEqual(t, runewidth.StringWidth(line), 24, line)
	}
	require.Contains(t, out, "…")

	out = mustRun(t, "--no-color", "--config", dir, "show", "create", "0")
	require.Contains(t, out, "POST https://api.test/a/very/long/path/for/widgets")
	require.Contains(t, out, `{"name":"widget"}`)

	out = mustRun(t, "--config", dir, "show", "create", "0", "--highlight")
	require.Contains(t, out, "widget")
}

func TestBodyLexer(t *testing.T) {
	cases := map[string]string{
		"application/json; charset=utf-8":   "json",
		"application/problem+json":          "json",
		"text/xml":                          "xml",
		"text/html":                         "html",
		"application/javascript":            "javascript",
		"application/x-www-form-urlencoded": "text",
		"":                                  "",
	}
	for in, want := range cases {
		if got := bodyLexer(in); got != want {
			t.Fatalf("bodyLexer(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestImportEnvDirectory(t *testing.T) {
	dir := t.TempDir()
	envDir := filepath.Join(dir, "envs")
	require.NoError(t, os.MkdirAll(envDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(envDir, "shop.env.dev"), []byte("a=1\nb=2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(envDir, "shop.env.prod"), []byte("a=9\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(envDir, "ignored.curl"), []byte("curl https://x"), 0o644))

	out := mustRun(t, "--config", dir, "import", "env", envDir)
	require.Contains(t, out, `environment "shop.dev": 2 values`)
	require.Contains(t, out, `environment "shop.prod": 1 values`)

	_, err := run(t, "--config", dir, "import", "env", t.TempDir())
	require.Error(t, err)
}

func TestImportEnvSameNameKeepsEachFilesKeys(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a", "config.env.staging")
	b := filepath.Join(dir, "b", "config.env.staging")
	require.NoError(t, os.MkdirAll(filepath.Dir(a), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(b), 0o755))
	require.NoError(t, os.WriteFile(a, []byte("alpha=1\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("beta=2\ngamma=3\n"), 0o644))

	out := mustRun(t, "--config", dir, "import", "env", a, b)
	first, second, ok := strings.Cut(out, `environment "config.staging": 2 values`)
	require.True(t, ok, out)
	require.Contains(t, first, `environment "config.staging": 1 values`)
	require.Contains(t, first, "  alpha\n")
	require.NotContains(t, first, "beta")
	require.Contains(t, second, "  beta\n")
	require.Contains(t, second, "  gamma\n")
	require.NotContains(t, second, "alpha")
}

func TestRemoveRequestCommand(t *testing.T) {
	dir := t.TempDir()
	for name, cmd := range map[string]string{
		"one.curl": "curl https://api.test/one",
		"two.curl": "curl https://api.test/two",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(cmd), 0o644))
	}
	mustRun(t, "--config", dir, "import", "curl", filepath.Join(dir, "one.curl"), "--collection", "api")
	mustRun(t, "--config", dir, "import", "curl", filepath.Join(dir, "two.curl"), "--collection", "api")

	out := mustRun(t, "--config", dir, "rm", "api", "0")
	require.Contains(t, out, `removed "one" from "api"`)

	out = mustRun(t, "--no-color", "--config", dir, "tree")
	require.NotContains(t, out, "https://api.test/one")
	require.Contains(t, out, "https://api.test/two")

	_, err := run(t, "--config", dir, "rm", "api", "3")
	require.Error(t, err)
}

func TestHistoryFilterAndDelete(t *testing.T) {
	dir := t.TempDir()
	curlPath := filepath.Join(dir, "ping.curl")
	require.NoError(t, os.WriteFile(curlPath, []byte("curl https://api.test/ping"), 0o644))
	envPath := filepath.Join(dir, ".env.local")
	require.NoError(t, os.WriteFile(envPath, []byte("k=v\n"), 0o644))
	mustRun(t, "--config", dir, "import", "curl", curlPath)
	mustRun(t, "--config", dir, "import", "env", envPath)

	out := mustRun(t, "--no-color", "--config", dir, "history", "--name", "ping")
	require.Contains(t, out, "#1")
	require.Contains(t, out, "https://api.test/ping")
	require.NotContains(t, out, "local")

	out = mustRun(t, "--config", dir, "history", "--delete", "1")
	require.Contains(t, out, "deleted entry 1")
	out = mustRun(t, "--no-color", "--config", dir, "history")
	require.NotContains(t, out, "ping")
	require.Contains(t, out, "local")

	_, err := run(t, "--config", dir, "history", "--delete", "1")
	require.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	out := mustRun(t, "--config", dir, "config", "init", "--format", "json")
	path := filepath.Join(dir, "settings.json")
	require.Contains(t, out, "wrote "+path)
	require.FileExists(t, path)

	_, err := run(t, "--config", dir, "config", "init", "--format", "json")
	require.Error(t, err)
	mustRun(t, "--config", dir, "config", "init", "--format", "json", "--force")
	_, err = run(t, "--config", dir, "config", "init", "--format", "ini")
	require.Error(t, err)

	out = mustRun(t, "--config", dir, "config", "show")
	require.Contains(t, out, "# "+path)
	require.Contains(t, out, `"collections_dir": "`+filepath.Join(dir, "collections"))
	require.Contains(t, out, `"collection_format": "yaml"`)
}

func TestContentTypeFallsBackToBodyKind(t *testing.T) {
	req := request.NewRequest("x")
	req.Body = request.Body{Kind: request.BodyJSON, Text: `{"n":1}`}
	require.Equal(t, "json", bodyLexer(contentType(req)))

	req.Headers = []request.KeyValue{
		{Key: "content-type", Value: "text/html", Enabled: true},
		{Key: "Content-Type", Value: "application/xml", Enabled: false},
	}
	require.Equal(t, "html", bodyLexer(contentType(req)))

	req.Headers = nil
	req.Body = request.RawBody("plain")
	require.Equal(t, "", contentType(req))
}

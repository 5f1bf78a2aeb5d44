package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/notedown/pkg/api"
)

// isolate points every XDG dir at a temp tree so commands run against a
// fresh sqlite store and never touch the user's config.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmp, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_RUNTIME_DIR", filepath.Join(tmp, "run"))
	require.NoError(t, os.MkdirAll(filepath.Join(tmp, "run"), 0o700))
	return tmp
}

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAddAndList(t *testing.T) {
	isolate(t)

	out, err := runCmd(t, "", "add", "first note", "-t", "work")
	require.NoError(t, err)
	assert.Equal(t, "1\tfirst note\n", out)

	out, err = runCmd(t, "", "add", "second note")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "2\t"))

	out, err = runCmd(t, "", "list", "-o", "plain", "--headers=false")
	require.NoError(t, err)
	assert.Contains(t, out, "first note")
	assert.Contains(t, out, "second note")

	out, err = runCmd(t, "", "list", "--tags-any", "work", "--headers=false")
	require.NoError(t, err)
	assert.Contains(t, out, "first note")
	assert.NotContains(t, out, "second note")
}

func TestShowJSON(t *testing.T) {
	isolate(t)
	_, err := runCmd(t, "", "add", "alpha", "--body", "# Heading")
	require.NoError(t, err)

	out, err := runCmd(t, "", "show", "1", "-o", "json")
	require.NoError(t, err)

	var n api.Note
	require.NoError(t, json.Unmarshal([]byte(out), &n))
	assert.Equal(t, "alpha", n.Title)
	assert.Equal(t, "# Heading", n.Body)
}

func TestShowMissingNote(t *testing.T) {
	isolate(t)
	_, err := runCmd(t, "", "show", "99")
	assert.Error(t, err)

	_, err = runCmd(t, "", "show", "zero")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	isolate(t)
	_, err := runCmd(t, "", "add", "doomed")
	require.NoError(t, err)

	out, err := runCmd(t, "", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 1")

	_, err = runCmd(t, "", "delete", "1")
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	isolate(t)
	_, err := runCmd(t, "", "add", "groceries", "--body", "buy milk and eggs")
	require.NoError(t, err)
	_, err = runCmd(t, "", "add", "standup", "--body", "retro notes")
	require.NoError(t, err)

	out, err := runCmd(t, "", "search", "milk", "--headers=false")
	require.NoError(t, err)
	assert.Contains(t, out, "groceries")
	assert.NotContains(t, out, "standup")

	out, err = runCmd(t, "", "search", `milk and \w+`, "--regex", "--headers=false")
	require.NoError(t, err)
	assert.Contains(t, out, "groceries")

	_, err = runCmd(t, "", "search", "(", "--regex")
	assert.Error(t, err)
}

func TestTags(t *testing.T) {
	isolate(t)
	_, err := runCmd(t, "", "add", "a", "-t", "go,notes")
	require.NoError(t, err)
	_, err = runCmd(t, "", "add", "b", "-t", "go")
	require.NoError(t, err)

	out, err := runCmd(t, "", "tags")
	require.NoError(t, err)
	assert.Contains(t, out, "go")
	assert.Contains(t, out, "notes")
}

func TestRenderStdin(t *testing.T) {
	isolate(t)
	out, err := runCmd(t, "**bold** and <tag>", "render", "-")
	require.NoError(t, err)
	assert.Equal(t, "<p><strong>bold</strong> and &lt;tag&gt;</p>\n", out)
}

func TestRenderStoredNotePage(t *testing.T) {
	isolate(t)
	_, err := runCmd(t, "", "add", "page note", "--body", "# Title")
	require.NoError(t, err)

	out, err := runCmd(t, "", "render", "--note", "1", "--page")
	require.NoError(t, err)
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<h1>Title</h1>")
}

func TestExportImportRoundTrip(t *testing.T) {
	tmp := isolate(t)
	_, err := runCmd(t, "", "add", "one", "--body", "b1", "-t", "x")
	require.NoError(t, err)
	_, err = runCmd(t, "", "add", "two", "--body", "b2")
	require.NoError(t, err)

	exportPath := filepath.Join(tmp, "notes.ndjson")
	_, err = runCmd(t, "", "export", "-o", "ndjson", "-f", exportPath)
	require.NoError(t, err)

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	// Import into a fresh store.
	isolate(t)
	out, err := runCmd(t, "", "import", "-f", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported: 2")

	out, err = runCmd(t, "", "list", "--headers=false")
	require.NoError(t, err)
	assert.Contains(t, out, "one")
	assert.Contains(t, out, "two")
}

func TestExportImportMarkdownDir(t *testing.T) {
	tmp := isolate(t)
	_, err := runCmd(t, "", "add", "Meeting Notes", "--body", "discussed roadmap")
	require.NoError(t, err)
	_, err = runCmd(t, "", "add", "Groceries", "--body", "milk")
	require.NoError(t, err)

	dir := filepath.Join(tmp, "md")
	_, err = runCmd(t, "", "export", "--dir", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "1-meeting-notes.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Meeting Notes\n\ndiscussed roadmap\n", string(data))
	_, err = os.Stat(filepath.Join(dir, "2-groceries.md"))
	require.NoError(t, err)

	isolate(t)
	out, err := runCmd(t, "", "import", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported: 2")

	// ReadDir returns sorted names, so the first file becomes note 1.
	out, err = runCmd(t, "", "show", "1", "-o", "json")
	require.NoError(t, err)
	var n api.Note
	require.NoError(t, json.Unmarshal([]byte(out), &n))
	assert.Equal(t, "Meeting Notes", n.Title)
	assert.Equal(t, "discussed roadmap", n.Body)
}

func TestNoteFileName(t *testing.T) {
	cases := []struct {
		id    int64
		title string
		want  string
	}{
		{1, "Meeting Notes", "1-meeting-notes.md"},
		{2, "hello, world!", "2-hello-world.md"},
		{3, "", "3.md"},
		{4, "---", "4.md"},
	}
	for _, c := range cases {
		got := noteFileName(api.Note{ID: c.id, Title: c.title})
		assert.Equal(t, c.want, got, c.title)
	}
}

func TestParseMarkdownNote(t *testing.T) {
	title, body := parseMarkdownNote("# A Title\n\nthe body\n")
	assert.Equal(t, "A Title", title)
	assert.Equal(t, "the body", body)

	title, body = parseMarkdownNote("no heading here\n")
	assert.Equal(t, "", title)
	assert.Equal(t, "no heading here", body)

	title, body = parseMarkdownNote("# Only Heading")
	assert.Equal(t, "Only Heading", title)
	assert.Equal(t, "", body)
}

func TestRenderStrictListsFlag(t *testing.T) {
	isolate(t)
	src := "* a\n\ntext\n\n* b"

	out, err := runCmd(t, src, "render", "-")
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>a</li></ul>\n<p>text</p>\n<li>b</li>\n", out)

	out, err = runCmd(t, src, "render", "-", "--strict-lists")
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>a</li></ul>\n<p>text</p>\n<ul><li>b</li></ul>\n", out)
}

func TestConfigInit(t *testing.T) {
	tmp := isolate(t)
	path := filepath.Join(tmp, "config", "notedown", "config.toml")

	out, err := runCmd(t, "", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "data_dir")

	// Second run refuses without a merge/overwrite flag.
	_, err = runCmd(t, "", "config", "init")
	assert.Error(t, err)

	out, err = runCmd(t, "", "config", "init", "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestBadOutputMode(t *testing.T) {
	isolate(t)
	_, err := runCmd(t, "", "list", "-o", "yaml")
	assert.Error(t, err)
}

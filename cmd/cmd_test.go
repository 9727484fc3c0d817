package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ucf/section/internal/section"
)

// newProject creates a content tree in a temporary directory and makes it
// the working directory.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"content/sections/welcome.md": "---\nid: 1\ntitle: Welcome\ntags: [news]\nstylesheet: 10\n---\n<p>Hi</p>\n",
		"content/sections/footer.md":  "---\nid: 3\n---\nBye\n",
		"content/home.md":             "---\nid: 2\ntitle: Home\n---\n[ucf-section slug=\"welcome\"]\n",
		"content/attachments.yml":     "- id: 10\n  path: welcome.css\n  mime_type: text/css\n",
		"uploads/welcome.css":         ".welcome{color:red}",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	t.Chdir(dir)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestListCommand_Table(t *testing.T) {
	newProject(t)

	out, err := execute(t, "list", "-o", "table", "--pages=false")
	require.NoError(t, err)
	assert.Contains(t, out, "SLUG")
	assert.Contains(t, out, "welcome")
	assert.Contains(t, out, "footer")
	assert.Contains(t, out, "news")
	assert.NotContains(t, out, "home")
}

func TestListCommand_JSON(t *testing.T) {
	newProject(t)

	out, err := execute(t, "list", "-o", "json", "--pages=false")
	require.NoError(t, err)

	var records []section.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, int64(10), records[0].StylesheetID)
}

func TestListCommand_Pages(t *testing.T) {
	newProject(t)

	out, err := execute(t, "list", "-o", "yaml", "--pages")
	require.NoError(t, err)

	var records []section.Record
	require.NoError(t, yaml.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "home", records[0].Slug)
}

func TestListCommand_RejectsUnknownFormat(t *testing.T) {
	newProject(t)

	_, err := execute(t, "list", "-o", "csv")
	assert.Error(t, err)
}

func TestRenderCommand(t *testing.T) {
	newProject(t)

	out, err := execute(t, "render", "home", "--section=false", "--body=false")
	require.NoError(t, err)
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<title>Home</title>")
	assert.Contains(t, out, `<style id="ucf-section-style-10" type="text/css">`)
	assert.Contains(t, out, `<section class="ucf-section ucf-section-welcome">`)
}

func TestRenderCommand_SectionBody(t *testing.T) {
	newProject(t)

	out, err := execute(t, "render", "footer", "--section", "--body")
	require.NoError(t, err)
	assert.Equal(t, "<section class=\"ucf-section ucf-section-footer\">\n<p>Bye</p>\n</section>\n", out)
}

func TestRenderCommand_UnknownSlug(t *testing.T) {
	newProject(t)

	_, err := execute(t, "render", "missing", "--section=false", "--body=false")
	assert.Error(t, err)
}

func TestImportCommand(t *testing.T) {
	dir := newProject(t)
	db := filepath.Join(dir, "site.db")

	out, err := execute(t, "import", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 records")
	assert.FileExists(t, db)
}

func TestTypesCommand(t *testing.T) {
	newProject(t)

	out, err := execute(t, "types", "-o", "json")
	require.NoError(t, err)

	var def struct {
		Name string `json:"name"`
		Args struct {
			Labels map[string]string `json:"labels"`
		} `json:"args"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &def))
	assert.Equal(t, "ucf_section", def.Name)
	assert.Equal(t, "Add New Section", def.Args.Labels["add_new_item"])
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "sections ")
	assert.Contains(t, out, "platform:")

	out, err = execute(t, "version", "-o", "json")
	require.NoError(t, err)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info["go_version"])
}

func TestFormatValue(t *testing.T) {
	v := newFormatValue("table", "table", "json")
	assert.Equal(t, "table", v.String())
	assert.Equal(t, "format", v.Type())
	require.NoError(t, v.Set(" JSON "))
	assert.Equal(t, "json", v.String())
	assert.Error(t, v.Set("xml"))
	assert.Equal(t, "json", v.String())
}

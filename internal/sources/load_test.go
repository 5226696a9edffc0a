package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfoliorag/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSON_Projects(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "projects.json", `{"projects":[{"name":"Site","description":"My site","tags":["Go","React"],"links":[{"name":"GitHub","href":"https://github.com/x/site"}]}]}`)

	var p Projects
	require.NoError(t, LoadJSON(path, &p))
	require.Len(t, p.Projects, 1)
	assert.Equal(t, "Site", p.Projects[0].Name)
	assert.Equal(t, []string{"Go", "React"}, p.Projects[0].Tags)
}

func TestLoadJSON_RejectsMissingRequiredField(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "career.json", `{"career":[{"name":"Acme","start":"2020"}]}`)

	var c Career
	err := LoadJSON(path, &c)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidSource)
	assert.Contains(t, err.Error(), "career[0].title")
}

func TestLoadJSON_RejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "socials.json", `{"socials": [`)

	var s Socials
	assert.Error(t, LoadJSON(path, &s))
}

func TestLoadJSON_MissingRequiredFile(t *testing.T) {
	var h Home
	err := LoadJSON(filepath.Join(t.TempDir(), "home.json"), &h)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOptionalJSON_Absent(t *testing.T) {
	var r Routes
	found, err := LoadOptionalJSON(filepath.Join(t.TempDir(), "routes.json"), &r)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoadOptionalJSON_Present(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "routes.json", `{"routes":[{"path":"/blog","name":"Blog","description":"Posts"}],"externalLinks":[{"path":"https://x.dev","name":"X","description":"ext"}]}`)

	var r Routes
	found, err := LoadOptionalJSON(path, &r)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, r.ExternalLinks, 1)
}

func TestReadOptionalText(t *testing.T) {
	dir := t.TempDir()

	_, found, err := ReadOptionalText(filepath.Join(dir, "privacy.md"))
	require.NoError(t, err)
	assert.False(t, found)

	path := writeFile(t, dir, "privacy.md", "# Privacy")
	text, found, err := ReadOptionalText(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "# Privacy", text)
}

func TestExists_Directory(t *testing.T) {
	ok, err := Exists(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHome_Validate(t *testing.T) {
	var h Home
	assert.ErrorIs(t, h.Validate(), domain.ErrInvalidSource)

	h.Introduction.Greeting = "Hi"
	h.Introduction.Description = "I build things"
	assert.NoError(t, h.Validate())
}

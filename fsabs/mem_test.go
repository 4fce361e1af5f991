package fsabs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tangerg/pyflow/fsabs"
)

func TestMemFilesystemBasics(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"pkg/__init__.py": "",
		"pkg/mod.py":      "x = 1\n",
	})

	assert.True(t, fs.IsFile("pkg/mod.py"))
	assert.False(t, fs.IsFile("pkg"))
	assert.True(t, fs.IsDirectory("pkg"))
	assert.False(t, fs.IsDirectory("pkg/mod.py"))

	content, err := fs.ReadToString("pkg/mod.py")
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", content)

	_, err = fs.ReadToString("missing")
	assert.ErrorIs(t, err, fsabs.ErrNotExist)

	entries, err := fs.ReadDirectory("pkg")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "__init__.py", entries[0].Name)
	assert.False(t, entries[0].IsDir)
}

func TestMemFilesystemRevisionTracking(t *testing.T) {
	fs := fsabs.NewMem()
	before := fs.Revision()
	var changed []string
	fs.OnChange(func(path string) { changed = append(changed, path) })

	fs.WriteFile("a.py", "")
	fs.RemoveFile("a.py")
	assert.Equal(t, before+2, fs.Revision())
	assert.Equal(t, []string{"a.py", "a.py"}, changed)
}

func TestMemCaseInsensitiveLookup(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{"Dir/File.py": ""})
	fs.SetCaseInsensitive()
	assert.True(t, fs.IsFile("dir/file.py"))
	assert.False(t, fs.PathExistsCaseSensitive("dir/file.py", "Dir"))
	assert.True(t, fs.PathExistsCaseSensitive("Dir/File.py", "Dir"))
}

func TestArchiveFilesystem(t *testing.T) {
	fs := fsabs.NewArchiveFromMap(map[string]string{
		"os/__init__.pyi":    "",
		"os/path.pyi":        "",
		"collections/abc.pyi": "",
		"sys.pyi":            "",
	})

	assert.True(t, fs.IsFile("sys.pyi"))
	assert.True(t, fs.IsDirectory("os"))
	assert.False(t, fs.IsDirectory("sys.pyi"))

	entries, err := fs.ReadDirectory("os")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "__init__.pyi", entries[0].Name)

	_, err = fs.ReadDirectory("nope")
	assert.ErrorIs(t, err, fsabs.ErrNotExist)

	canon, err := fs.CanonicalizePath("os/path.pyi")
	require.NoError(t, err)
	assert.Equal(t, "os/path.pyi", canon)
	assert.Equal(t, fsabs.CaseSensitive, fs.CaseSensitivity())
}

package resolve

import (
	"strings"

	"github.com/Tangerg/pyflow/fsabs"
)

// depSet records the filesystem entries one query consulted, which is
// exactly the dependency footprint its cached result registers. Changes at paths a query never
// looked at therefore cannot invalidate it. Every query reads each
// site-packages directory listing (for `.pth` discovery) and probes each
// editable-install directory, so adding or removing a file directly
// inside one of those directories invalidates every cached query,
// whichever search path it resolved at.
type depSet map[string]struct{}

func newDepSet() depSet {
	return depSet{}
}

func (d depSet) record(path string) {
	if path != "" {
		d[path] = struct{}{}
	}
}

// affectedBy reports whether a change at path invalidates this
// dependency set: either the exact path was consulted, or its parent
// directory's listing was (adding/removing a file changes the parent's
// entries).
func (d depSet) affectedBy(path string) bool {
	if _, ok := d[path]; ok {
		return true
	}
	if parent := parentDir(path); parent != "" {
		if _, ok := d[parent]; ok {
			return true
		}
	}
	return false
}

func parentDir(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return ""
	}
	return path[:i]
}

// recordingFS wraps an fsabs.FS so that every path passed to IsFile,
// IsDirectory, ReadToString, ReadDirectory or PathExistsCaseSensitive
// lands in the query's depSet before the underlying filesystem answers.
// CanonicalizePath and CaseSensitivity are passed through unrecorded.
type recordingFS struct {
	inner fsabs.FS
	deps  depSet
}

func newRecordingFS(inner fsabs.FS, deps depSet) *recordingFS {
	return &recordingFS{inner: inner, deps: deps}
}

func (f *recordingFS) IsFile(path string) bool {
	f.deps.record(path)
	return f.inner.IsFile(path)
}

func (f *recordingFS) IsDirectory(path string) bool {
	f.deps.record(path)
	return f.inner.IsDirectory(path)
}

func (f *recordingFS) ReadToString(path string) (string, error) {
	f.deps.record(path)
	return f.inner.ReadToString(path)
}

func (f *recordingFS) ReadDirectory(path string) ([]fsabs.DirEntry, error) {
	f.deps.record(path)
	return f.inner.ReadDirectory(path)
}

func (f *recordingFS) CanonicalizePath(path string) (string, error) {
	return f.inner.CanonicalizePath(path)
}

func (f *recordingFS) CaseSensitivity() fsabs.CaseSensitivity {
	return f.inner.CaseSensitivity()
}

func (f *recordingFS) PathExistsCaseSensitive(path, root string) bool {
	f.deps.record(path)
	return f.inner.PathExistsCaseSensitive(path, root)
}

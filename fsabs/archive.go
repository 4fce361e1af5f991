package fsabs

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ArchiveFilesystem serves FS queries against a zstd-compressed tar
// snapshot, the transport for the vendored standard-library stubs.
// The whole
// archive is decoded once at construction; queries never touch the
// decoder again.
type ArchiveFilesystem struct {
	files map[string]string
	dirs  map[string]bool
}

// NewArchive decodes a .tar.zst snapshot into an in-memory FS.
func NewArchive(r io.Reader) (*ArchiveFilesystem, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("fsabs: open zstd stream: %w", err)
	}
	defer dec.Close()

	fs := &ArchiveFilesystem{files: map[string]string{}, dirs: map[string]bool{}}
	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fsabs: read tar entry: %w", err)
		}
		name := normalize(hdr.Name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			fs.dirs[name] = true
		case tar.TypeReg:
			var buf bytes.Buffer
			if _, err := io.Copy(&buf, tr); err != nil {
				return nil, fmt.Errorf("fsabs: read %s: %w", name, err)
			}
			fs.files[name] = buf.String()
			fs.addParents(name)
		}
	}
	return fs, nil
}

// NewArchiveFromMap builds an archive-shaped FS directly from a path
// map, for tests that do not want to author a real tarball.
func NewArchiveFromMap(files map[string]string) *ArchiveFilesystem {
	fs := &ArchiveFilesystem{files: map[string]string{}, dirs: map[string]bool{}}
	for path, content := range files {
		path = normalize(path)
		fs.files[path] = content
		fs.addParents(path)
	}
	return fs
}

func (f *ArchiveFilesystem) addParents(path string) {
	for {
		i := strings.LastIndexByte(path, '/')
		if i < 0 {
			return
		}
		path = path[:i]
		f.dirs[path] = true
	}
}

func (f *ArchiveFilesystem) IsFile(path string) bool {
	_, ok := f.files[normalize(path)]
	return ok
}

func (f *ArchiveFilesystem) IsDirectory(path string) bool {
	return f.dirs[normalize(path)]
}

func (f *ArchiveFilesystem) ReadToString(path string) (string, error) {
	content, ok := f.files[normalize(path)]
	if !ok {
		return "", ErrNotExist
	}
	return content, nil
}

func (f *ArchiveFilesystem) ReadDirectory(path string) ([]DirEntry, error) {
	path = normalize(path)
	if !f.dirs[path] {
		return nil, ErrNotExist
	}
	prefix := path + "/"
	seen := map[string]bool{}
	var out []DirEntry
	for p := range f.files {
		if strings.HasPrefix(p, prefix) {
			rest := p[len(prefix):]
			name, isDir := rest, false
			if i := strings.IndexByte(rest, '/'); i >= 0 {
				name, isDir = rest[:i], true
			}
			if !seen[name] {
				seen[name] = true
				out = append(out, DirEntry{Name: name, IsDir: isDir})
			}
		}
	}
	for d := range f.dirs {
		if strings.HasPrefix(d, prefix) && !strings.Contains(d[len(prefix):], "/") {
			name := d[len(prefix):]
			if name != "" && !seen[name] {
				seen[name] = true
				out = append(out, DirEntry{Name: name, IsDir: true})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *ArchiveFilesystem) CanonicalizePath(path string) (string, error) {
	return normalize(path), nil
}

func (f *ArchiveFilesystem) CaseSensitivity() CaseSensitivity {
	return CaseSensitive
}

func (f *ArchiveFilesystem) PathExistsCaseSensitive(path, _ string) bool {
	return f.IsFile(path) || f.IsDirectory(path)
}

package fsabs

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// OSFilesystem backs FS with the real disk.
type OSFilesystem struct{}

// NewOS returns an FS over the host filesystem.
func NewOS() *OSFilesystem {
	return &OSFilesystem{}
}

func (f *OSFilesystem) IsFile(path string) bool {
	info, err := os.Stat(filepath.FromSlash(path))
	return err == nil && info.Mode().IsRegular()
}

func (f *OSFilesystem) IsDirectory(path string) bool {
	info, err := os.Stat(filepath.FromSlash(path))
	return err == nil && info.IsDir()
}

func (f *OSFilesystem) ReadToString(path string) (string, error) {
	b, err := os.ReadFile(filepath.FromSlash(path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotExist
		}
		return "", err
	}
	return string(b), nil
}

func (f *OSFilesystem) ReadDirectory(path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(filepath.FromSlash(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, DirEntry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return out, nil
}

func (f *OSFilesystem) CanonicalizePath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(filepath.FromSlash(path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotExist
		}
		return "", err
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(abs), nil
}

func (f *OSFilesystem) CaseSensitivity() CaseSensitivity {
	switch runtime.GOOS {
	case "darwin", "windows":
		return CaseInsensitive
	default:
		return CaseSensitive
	}
}

// PathExistsCaseSensitive walks path's components below root against
// the actual directory listings, so a case-insensitive filesystem can
// still reject `import Foo` resolving to `foo.py`.
func (f *OSFilesystem) PathExistsCaseSensitive(path, root string) bool {
	if f.CaseSensitivity() == CaseSensitive {
		return f.IsFile(path) || f.IsDirectory(path)
	}
	rel, ok := relativeTo(path, root)
	if !ok {
		return f.IsFile(path) || f.IsDirectory(path)
	}
	current := root
	for _, component := range strings.Split(rel, "/") {
		if component == "" {
			continue
		}
		entries, err := f.ReadDirectory(current)
		if err != nil {
			return false
		}
		found := false
		for _, e := range entries {
			if e.Name == component {
				found = true
				break
			}
		}
		if !found {
			return false
		}
		current = current + "/" + component
	}
	return true
}

// relativeTo returns path relative to root if root is one of its
// ancestors.
func relativeTo(path, root string) (string, bool) {
	path = strings.TrimSuffix(path, "/")
	root = strings.TrimSuffix(root, "/")
	if path == root {
		return "", true
	}
	if strings.HasPrefix(path, root+"/") {
		return path[len(root)+1:], true
	}
	return "", false
}

// Package pth parses `.pth` editable-install files found in
// site-packages directories and turns their path lines into additional
// search roots.
package pth

import (
	"path"
	"sort"
	"strings"

	"github.com/Tangerg/pyflow/fsabs"
)

// ParseLines extracts the search paths contributed by one .pth file's
// content. dir is the containing site-packages directory, which
// relative lines are resolved against. Rules:
// - empty lines and `#` comment lines contribute nothing;
// - lines starting with `import ` or `import\t` are dynamic code and
// deliberately ignored;
// - leading whitespace disables a line; trailing whitespace is
// stripped.
func ParseLines(content, dir string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			continue
		}
		line = strings.TrimRight(line, " \t")
		if line == "" || line[0] == '#' {
			continue
		}
		if strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "import\t") {
			continue
		}
		if isAbsolute(line) {
			out = append(out, normalize(line))
		} else {
			out = append(out, normalize(dir+"/"+line))
		}
	}
	return out
}

// Discover enumerates the .pth files of one site-packages directory in
// sorted filename order and returns every search path they contribute.
func Discover(fs fsabs.FS, dir string) []string {
	entries, err := fs.ReadDirectory(dir)
	if err != nil {
		return nil
	}
	var pthFiles []string
	for _, e := range entries {
		if !e.IsDir && strings.HasSuffix(e.Name, ".pth") {
			pthFiles = append(pthFiles, e.Name)
		}
	}
	sort.Strings(pthFiles)

	var out []string
	for _, name := range pthFiles {
		content, err := fs.ReadToString(dir + "/" + name)
		if err != nil {
			continue
		}
		out = append(out, ParseLines(content, dir)...)
	}
	return out
}

func isAbsolute(path string) bool {
	if strings.HasPrefix(path, "/") {
		return true
	}
	// Windows-style drive prefix.
	return len(path) >= 3 && path[1] == ':' && (path[2] == '\\' || path[2] == '/')
}

func normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimSuffix(path.Clean(p), "/")
}

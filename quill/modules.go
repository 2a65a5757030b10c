package quill

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

// ModuleExt is the file extension module sources look for.
const ModuleExt = ".ql"

// Source supplies module text by name. Load returns an error wrapping
// ErrModuleNotFound when the source does not hold the module, which lets
// the resolver move on to the next source.
type Source interface {
	Load(name string) (string, error)
}

// MapSource serves modules from memory, keyed by module name.
type MapSource map[string]string

func (m MapSource) Load(name string) (string, error) {
	src, ok := m[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	return src, nil
}

// FSSource reads <name>.ql files from a file system.
type FSSource struct {
	FS fs.FS
}

func (s FSSource) Load(name string) (string, error) {
	file := moduleFile(name)
	data, err := fs.ReadFile(s.FS, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrModuleNotFound, name)
		}
		return "", fmt.Errorf("reading module %s: %w", file, err)
	}
	return string(data), nil
}

// DirSource reads modules from a directory on disk.
func DirSource(dir string) FSSource {
	return FSSource{FS: os.DirFS(dir)}
}

func moduleFile(name string) string {
	return name + ModuleExt
}

// normalizeModuleName cleans an import name into a slash-separated path
// relative to every source root.
func normalizeModuleName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	trimmed = strings.TrimSuffix(trimmed, ModuleExt)
	if trimmed == "" {
		return "", fmt.Errorf("module name must be non-empty")
	}
	if strings.HasPrefix(trimmed, "/") {
		return "", fmt.Errorf("module name %q must be relative", name)
	}
	clean := path.Clean(trimmed)
	if clean == "." {
		return "", fmt.Errorf("module name %q resolves to the source root", name)
	}
	for _, part := range strings.Split(clean, "/") {
		if part == ".." {
			return "", fmt.Errorf("module name %q escapes the source root", name)
		}
	}
	return clean, nil
}

func validateModulePaths(paths []string) error {
	for _, dir := range paths {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("quill: module path cannot be empty")
		}
		stat, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("quill: invalid module path %q: %w", dir, err)
		}
		if !stat.IsDir() {
			return fmt.Errorf("quill: module path %q is not a directory", dir)
		}
	}
	return nil
}

package godbc

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultExtensions are the file extensions recognized as DBC files.
var DefaultExtensions = []string{".dbc"}

// Source provides named DBC inputs for LoadAll.
type Source interface {
	// ListFiles returns the names of all inputs of this source, in the
	// order they should be reported.
	ListFiles() ([]string, error)

	// ReadFile returns the raw bytes of an input returned by ListFiles.
	ReadFile(name string) ([]byte, error)

	// String describes the source for error reporting.
	String() string
}

// SourceOption configures a directory source.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	extensions []string
	recursive  bool
}

func defaultSourceConfig() sourceConfig {
	return sourceConfig{
		extensions: DefaultExtensions,
	}
}

// WithExtensions sets the file extensions to recognize for this source.
// Matching is case-insensitive.
func WithExtensions(exts ...string) SourceOption {
	return func(c *sourceConfig) {
		c.extensions = exts
	}
}

// WithRecursion makes a directory source descend into subdirectories.
func WithRecursion() SourceOption {
	return func(c *sourceConfig) {
		c.recursive = true
	}
}

// --- File Source ---

type fileSource struct {
	path string
}

// File creates a Source for a single file.
func File(path string) Source {
	return fileSource{path: path}
}

func (s fileSource) ListFiles() ([]string, error) { return []string{s.path}, nil }

func (s fileSource) ReadFile(name string) ([]byte, error) {
	if name != s.path {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return os.ReadFile(name)
}

func (s fileSource) String() string { return s.path }

// --- Bytes Source (in-memory input) ---

type bytesSource struct {
	name string
	data []byte
}

// Bytes creates a Source for data already in memory. name is used in
// results and logs.
func Bytes(name string, data []byte) Source {
	return bytesSource{name: name, data: data}
}

func (s bytesSource) ListFiles() ([]string, error) { return []string{s.name}, nil }

func (s bytesSource) ReadFile(name string) ([]byte, error) {
	if name != s.name {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return s.data, nil
}

func (s bytesSource) String() string { return s.name }

// --- Dir Source ---

type dirSource struct {
	path   string
	config sourceConfig
}

// Dir creates a Source listing the DBC files of a directory, sorted by
// path. Subdirectories are skipped unless WithRecursion is given.
func Dir(path string, opts ...SourceOption) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	cfg := defaultSourceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &dirSource{path: path, config: cfg}, nil
}

// MustDir is like Dir but panics on error.
func MustDir(path string, opts ...SourceOption) Source {
	src, err := Dir(path, opts...)
	if err != nil {
		panic(err)
	}
	return src
}

func (s *dirSource) ListFiles() ([]string, error) {
	files, err := listFiles(os.DirFS(s.path), s.config)
	if err != nil {
		return nil, err
	}
	for i, f := range files {
		files[i] = filepath.Join(s.path, filepath.FromSlash(f))
	}
	return files, nil
}

func (s *dirSource) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (s *dirSource) String() string { return s.path }

// --- FS Source (for embed.FS, testing, archives) ---

type fsSource struct {
	name   string
	fsys   fs.FS
	config sourceConfig
}

// FS creates a Source backed by an fs.FS (e.g., embed.FS). The whole
// file system is walked. name prefixes the input names as "name:path".
func FS(name string, fsys fs.FS, opts ...SourceOption) Source {
	cfg := defaultSourceConfig()
	cfg.recursive = true
	for _, opt := range opts {
		opt(&cfg)
	}
	return &fsSource{name: name, fsys: fsys, config: cfg}
}

func (s *fsSource) ListFiles() ([]string, error) {
	files, err := listFiles(s.fsys, s.config)
	if err != nil {
		return nil, err
	}
	for i, f := range files {
		files[i] = s.name + ":" + f
	}
	return files, nil
}

func (s *fsSource) ReadFile(name string) ([]byte, error) {
	path, ok := strings.CutPrefix(name, s.name+":")
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return fs.ReadFile(s.fsys, path)
}

func (s *fsSource) String() string { return s.name }

// --- Multi Source (combines multiple sources) ---

type multiSource struct {
	sources []Source
}

// Multi combines multiple sources into one. Inputs are listed source by
// source; a name is read from the first source that lists it.
func Multi(sources ...Source) Source {
	return &multiSource{sources: sources}
}

func (s *multiSource) ListFiles() ([]string, error) {
	var files []string
	for _, src := range s.sources {
		f, err := src.ListFiles()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src, err)
		}
		files = append(files, f...)
	}
	return files, nil
}

func (s *multiSource) ReadFile(name string) ([]byte, error) {
	for _, src := range s.sources {
		files, err := src.ListFiles()
		if err != nil {
			return nil, err
		}
		if slices.Contains(files, name) {
			return src.ReadFile(name)
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

func (s *multiSource) String() string {
	names := make([]string, len(s.sources))
	for i, src := range s.sources {
		names[i] = src.String()
	}
	return strings.Join(names, ",")
}

// --- Helpers ---

// listFiles returns the slash-separated paths of matching regular files
// in fsys, in lexical order.
func listFiles(fsys fs.FS, cfg sourceConfig) ([]string, error) {
	extSet := makeExtensionSet(cfg.extensions)
	var files []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == "." {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != "." && !cfg.recursive {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && hasValidExtension(path, extSet) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func makeExtensionSet(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return set
}

func hasValidExtension(path string, extSet map[string]struct{}) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := extSet[ext]
	return ok
}

package source

import (
	"fmt"
	"os"
	"sync"

	"fortio.org/safecast"
)

// FileSet owns every source the driver touches in one run: files on disk,
// stdin, editor buffers and formatter output. Workers add files
// concurrently.
type FileSet struct {
	mu      sync.RWMutex
	files   []*File
	baseDir string
}

func NewFileSet() *FileSet {
	return &FileSet{}
}

// NewFileSetWithBase sets the directory relative paths are shown against.
func NewFileSetWithBase(baseDir string) *FileSet {
	return &FileSet{baseDir: baseDir}
}

// BaseDir returns the base directory, the working directory by default.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir != "" {
		return fileSet.baseDir
	}
	wd, _ := os.Getwd()
	return wd
}

// Add stores already normalized content. Every call gets a new FileID, so
// a file and its formatted output can live side by side under one path.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s too large: %w", path, err))
	}
	f := &File{
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   flags,
	}

	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()
	id, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("too many files: %w", err))
	}
	f.ID = FileID(id)
	fileSet.files = append(fileSet.files, f)
	return f.ID
}

// Load reads path from disk and adds it normalized.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, flags := Normalize(raw)
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds content that did not come from disk.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	content, _ = normalizeCRLF(content)
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns nil for an unknown id.
func (fileSet *FileSet) Get(id FileID) *File {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return fileSet.files[id]
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return f.Position(span.Start), f.Position(span.End)
}

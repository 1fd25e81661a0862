package driver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/text/unicode/norm"

	"rbfmt/internal/config"
)

var rubyExts = map[string]bool{
	".rb":      true,
	".rake":    true,
	".gemspec": true,
	".ru":      true,
}

var rubyNames = map[string]bool{
	"Rakefile": true,
	"Gemfile":  true,
}

// IsRubyFile reports whether name looks like Ruby source by extension or by
// one of the conventional extensionless names.
func IsRubyFile(name string) bool {
	base := filepath.Base(name)
	return rubyExts[filepath.Ext(base)] || rubyNames[base]
}

// ErrNoFiles is returned when the given paths hold nothing to format.
var ErrNoFiles = errors.New("format: no Ruby files found")

// configCache resolves the config governing each directory once.
type configCache struct {
	mu    sync.Mutex
	fixed *config.Config
	byDir map[string]*config.Config
}

func newConfigCache(fixed *config.Config) *configCache {
	return &configCache{fixed: fixed, byDir: make(map[string]*config.Config)}
}

func (c *configCache) forFile(path string) (*config.Config, error) {
	if c.fixed != nil {
		return c.fixed, nil
	}
	dir := filepath.Dir(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	if cfg, ok := c.byDir[dir]; ok {
		return cfg, nil
	}
	cfg, err := config.Discover(dir)
	if err != nil {
		return nil, err
	}
	c.byDir[dir] = cfg
	return cfg, nil
}

// gitignore is one .gitignore file and the directory its patterns are
// relative to.
type gitignore struct {
	dir   string
	rules *ignore.GitIgnore
}

type ignoreStack []gitignore

func (s ignoreStack) matches(path string, dir bool) bool {
	for _, gi := range s {
		rel, err := filepath.Rel(gi.dir, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		// имена на macOS приходят в NFD, паттерны пишут в NFC
		rel = norm.NFC.String(filepath.ToSlash(rel))
		if gi.rules.MatchesPath(rel) || dir && gi.rules.MatchesPath(rel+"/") {
			return true
		}
	}
	return false
}

// push loads dir/.gitignore when present and drops entries of directories
// the walk has left.
func (s ignoreStack) push(dir string) (ignoreStack, error) {
	out := s[:0:0]
	for _, gi := range s {
		if gi.dir == dir || isWithin(dir, gi.dir) {
			out = append(out, gi)
		}
	}
	rules, err := ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore"))
	switch {
	case err == nil:
		out = append(out, gitignore{dir: dir, rules: rules})
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}
	return out, nil
}

func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// collectSourceFiles expands paths into a sorted, de-duplicated list of
// Ruby files. Files named explicitly are always taken; files found while
// walking a directory are filtered by .gitignore files and by the exclude
// patterns of the config governing them.
func collectSourceFiles(ctx context.Context, paths []string, configs *configCache) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			addFile(p)
			continue
		}
		if err := walkDir(ctx, p, configs, addFile); err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func walkDir(ctx context.Context, root string, configs *configCache, add func(string)) error {
	var stack ignoreStack
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (d.Name() == ".git" || stack.matches(path, true)) {
				return filepath.SkipDir
			}
			stack, err = stack.push(path)
			return err
		}
		if !IsRubyFile(path) || stack.matches(path, false) {
			return nil
		}
		cfg, err := configs.forFile(path)
		if err != nil {
			return err
		}
		if cfg.Excluded(path) {
			return nil
		}
		add(path)
		return nil
	})
}

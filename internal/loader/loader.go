package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/griffnb/tsschema/internal/domain"
	"github.com/griffnb/tsschema/internal/parser/declaration"
	"golang.org/x/sync/errgroup"
)

// libraryMarker identifies the host language's bundled declaration files.
const libraryMarker = "/node_modules/typescript/lib/"

// LoadSearchDirs loads declaration files from the specified search directories
func (s *Service) LoadSearchDirs(dirs []string) (*LoadResult, error) {
	var paths []string
	for _, searchDir := range dirs {
		absDir, err := filepath.Abs(searchDir)
		if err != nil {
			return nil, err
		}

		found, err := s.walkDirectory(absDir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}

	return s.LoadFiles(paths)
}

// LoadFiles parses the given files and, when enabled, the files they import.
func (s *Service) LoadFiles(paths []string) (*LoadResult, error) {
	result := &LoadResult{
		Documents: make(map[string]*domain.Document),
	}

	abs := make([]string, 0, len(paths))
	for _, path := range paths {
		p, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		abs = append(abs, p)
	}

	if err := s.parseFiles(abs, result); err != nil {
		return nil, err
	}

	if s.followImports {
		if err := s.loadDependencies(result); err != nil {
			return nil, err
		}
	}

	s.debug.Printf("loaded %d documents", len(result.Documents))
	return result, nil
}

// walkDirectory walks a directory and collects declaration files
func (s *Service) walkDirectory(searchDir string) ([]string, error) {
	var paths []string
	err := filepath.Walk(searchDir, func(path string, f os.FileInfo, wError error) error {
		if wError != nil {
			return fmt.Errorf("failed to access path %q, err: %v", path, wError)
		}

		err := s.shouldSkipDir(path, f)
		if err != nil {
			return err
		}

		if f.IsDir() {
			return nil
		}

		if s.shouldSkipFile(path) {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	return paths, err
}

// parseFiles parses files in parallel and adds them to result
func (s *Service) parseFiles(paths []string, result *LoadResult) error {
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(runtime.NumCPU())

	for _, path := range paths {
		path := path
		if _, ok := result.Documents[path]; ok {
			continue
		}
		g.Go(func() error {
			doc, err := declaration.ParseFile(path)
			if err != nil {
				return fmt.Errorf("failed to parse file %s, error:%+v", path, err)
			}
			doc.Library = s.isLibrary(path)

			mu.Lock()
			result.Documents[path] = doc
			mu.Unlock()
			return nil
		})
	}

	return g.Wait()
}

// shouldSkipFile checks if a file should be skipped
func (s *Service) shouldSkipFile(path string) bool {
	if _, ok := s.excludes[path]; ok {
		return true
	}
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".test.ts") || strings.HasSuffix(lower, ".spec.ts") {
		return true
	}
	for _, ext := range s.parseExtensions {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}
	return true
}

// shouldSkipDir checks if a directory should be skipped
func (s *Service) shouldSkipDir(path string, f os.FileInfo) error {
	if !f.IsDir() {
		return nil
	}

	if !s.parseNodeModules && f.Name() == "node_modules" {
		return filepath.SkipDir
	}
	if len(f.Name()) > 1 && f.Name()[0] == '.' && f.Name() != ".." {
		return filepath.SkipDir
	}

	if s.excludes != nil {
		if _, ok := s.excludes[path]; ok {
			return filepath.SkipDir
		}
	}

	return nil
}

// isLibrary reports whether path holds built-in library declarations
func (s *Service) isLibrary(path string) bool {
	if strings.Contains(filepath.ToSlash(path), libraryMarker) {
		return true
	}
	for _, lib := range s.libraryPaths {
		abs, err := filepath.Abs(lib)
		if err != nil {
			continue
		}
		if path == abs || strings.HasPrefix(path, abs+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func sortedKeys(docs map[string]*domain.Document) []string {
	keys := make([]string, 0, len(docs))
	for key := range docs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

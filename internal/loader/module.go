package loader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/griffnb/tsschema/internal/domain"
)

var moduleSuffixes = []string{"", ".ts", ".d.ts", ".tsx", "/index.ts", "/index.d.ts"}

// IsRelative reports whether a module specifier is relative to the importing file.
func IsRelative(specifier string) bool {
	return specifier == "." || specifier == ".." || strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// ModuleCandidates lists the files a relative specifier may refer to, in lookup order.
func ModuleCandidates(from, specifier string) []string {
	if !IsRelative(specifier) {
		return nil
	}
	base := filepath.Join(filepath.Dir(from), filepath.FromSlash(specifier))
	if strings.HasSuffix(base, ".js") {
		base = strings.TrimSuffix(base, ".js")
	}

	candidates := make([]string, 0, len(moduleSuffixes))
	for _, suffix := range moduleSuffixes {
		candidates = append(candidates, base+filepath.FromSlash(suffix))
	}
	return candidates
}

// ResolveModule returns the first candidate accepted by exists.
func ResolveModule(from, specifier string, exists func(string) bool) (string, bool) {
	for _, candidate := range ModuleCandidates(from, specifier) {
		if exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func moduleSpecifiers(imports, exports []domain.Import) []string {
	var specs []string
	for _, imp := range imports {
		specs = append(specs, imp.From)
	}
	for _, exp := range exports {
		if exp.From != "" {
			specs = append(specs, exp.From)
		}
	}
	return specs
}

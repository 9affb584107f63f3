package loader

// loadDependencies follows relative imports and re-exports of the loaded
// documents, breadth first, up to the configured depth.
func (s *Service) loadDependencies(result *LoadResult) error {
	frontier := result.Paths()
	for depth := 0; depth < s.maxDepth && len(frontier) > 0; depth++ {
		var next []string
		seen := make(map[string]struct{})
		for _, path := range frontier {
			doc := result.Documents[path]
			if doc == nil {
				continue
			}
			for _, specifier := range moduleSpecifiers(doc.Imports, doc.Exports) {
				target, ok := ResolveModule(path, specifier, fileExists)
				if !ok {
					continue
				}
				if _, loaded := result.Documents[target]; loaded {
					continue
				}
				if _, queued := seen[target]; queued || s.shouldSkipFile(target) {
					continue
				}
				seen[target] = struct{}{}
				next = append(next, target)
			}
		}
		if len(next) == 0 {
			return nil
		}

		s.debug.Printf("following %d imported files at depth %d", len(next), depth+1)
		if err := s.parseFiles(next, result); err != nil {
			return err
		}
		frontier = next
	}
	return nil
}

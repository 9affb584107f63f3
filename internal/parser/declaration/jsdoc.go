package declaration

import (
	"strings"

	"github.com/griffnb/tsschema/internal/domain"
)

// parseDocs merges documentation blocks into a description and ordered tags.
// The block closest to the node provides the description; tags of later blocks win.
func parseDocs(blocks []string) (string, domain.Tags) {
	var (
		description string
		tags        domain.Tags
	)
	for _, block := range blocks {
		desc, blockTags := parseDoc(block)
		if desc != "" {
			description = desc
		}
		for _, tag := range blockTags {
			tags = tags.Set(tag.Name, tag.Value)
		}
	}
	return description, tags
}

func parseDoc(block string) (string, domain.Tags) {
	body := strings.TrimSuffix(strings.TrimPrefix(block, "/**"), "*/")

	var (
		desc    []string
		tags    domain.Tags
		current = -1
	)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		if strings.HasPrefix(line, " ") {
			line = line[1:]
		}
		line = strings.TrimRight(line, " \t\r")

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@") {
			name, value := splitTag(trimmed[1:])
			if name == "" {
				continue
			}
			tags = append(tags, domain.Tag{Name: name, Value: value})
			current = len(tags) - 1
			continue
		}

		if current >= 0 {
			if trimmed != "" {
				if tags[current].Value == "" {
					tags[current].Value = trimmed
				} else {
					tags[current].Value += "\n" + trimmed
				}
			}
			continue
		}
		desc = append(desc, line)
	}

	return strings.TrimSpace(strings.Join(desc, "\n")), tags
}

func splitTag(text string) (string, string) {
	end := strings.IndexAny(text, " \t")
	if end < 0 {
		return text, ""
	}
	return text[:end], strings.TrimSpace(text[end+1:])
}

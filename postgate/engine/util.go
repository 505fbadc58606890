package engine

import (
	"regexp"
)

func dedupeStrings(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range in {
		if !seen[v] {
			out = append(out, v)
			seen[v] = true
		}
	}
	return out
}

// matches http(s) links and bare "www." references embedded in free text
var linkRegex = regexp.MustCompile(`(?i)(?:https?://|\bwww\.)[^\s<>()\[\]]+`)

// ExtractLinks returns the outbound link references found in free text.
func ExtractLinks(text string) []string {
	if text == "" {
		return nil
	}
	return linkRegex.FindAllString(text, -1)
}

func containsLink(text string) bool {
	return len(ExtractLinks(text)) > 0
}

// Package nlp holds small text helpers for cleaning model output.
package nlp

import (
	"regexp"
	"strings"
)

var (
	// Letters, digits and the punctuation that carries meaning in skill
	// names (c++, c#, node.js) count as word characters.
	nonWord   = regexp.MustCompile(`[^\p{L}\p{N}+#.]+`)
	spaceRuns = regexp.MustCompile(`\s+`)
)

// NormalizeText lowercases s and collapses every non-word run into a single
// space. Used as a comparison key, not for display.
func NormalizeText(s string) string {
	s = strings.ToLower(s)
	s = nonWord.ReplaceAllString(s, " ")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// skillAliases folds spellings that name the same skill onto one key.
// Intentionally small; extend as needed.
var skillAliases = map[string]string{
	"golang":     "go",
	"js":         "javascript",
	"ts":         "typescript",
	"k8s":        "kubernetes",
	"postgresql": "postgres",
	"nodejs":     "node.js",
	"reactjs":    "react",
}

// CanonicalSkills cleans a skill list coming out of the model: trims
// whitespace, drops empties and folds duplicates that differ only in case,
// punctuation or a known alias (golang/go, js/javascript). The first surface
// form wins. Never returns nil.
func CanonicalSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := map[string]struct{}{}
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := NormalizeText(s)
		if canonical, ok := skillAliases[key]; ok {
			key = canonical
		}
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

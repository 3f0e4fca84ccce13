// Package vss finds cross-dataset name matches with vector similarity
// search over sentence embeddings, where exact joins miss variations,
// typos, and format drift.
package vss

import "strings"

// PreprocessName normalizes a name for embedding: lowercase, commas to
// spaces, runs of whitespace collapsed.
func PreprocessName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, ",", " ")
	return strings.Join(strings.Fields(name), " ")
}

// IndexText builds the embedded text for a name with its location context.
// Missing suburb or postcode components are skipped.
func IndexText(name, suburb, postcode string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{name, suburb, postcode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
